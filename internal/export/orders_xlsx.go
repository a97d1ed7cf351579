package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/loomshop/loomshop-backend/internal/app/model"
)

const ordersSheet = "Orders"

var orderHeaders = []string{
	"Order ID", "User ID", "Status", "Total", "Shipping Address",
	"Created At", "Item Kind", "Item Name", "Unit Price", "Quantity", "Options",
}

// OrdersWorkbook renders orders into an XLSX workbook for back-office
// bookkeeping. Each order item gets its own row; order-level columns
// repeat so the sheet stays filterable.
func OrdersWorkbook(orders []model.Order) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ordersSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, header := range orderHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(ordersSheet, cell, header); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, order := range orders {
		items := order.Items
		if len(items) == 0 {
			items = []model.OrderItem{{}}
		}
		for _, item := range items {
			values := []interface{}{
				order.ID,
				order.UserID,
				string(order.Status),
				order.TotalAmount,
				order.ShippingAddress,
				order.CreatedAt.Format(time.RFC3339),
				string(item.Kind),
				item.Name,
				item.UnitPrice,
				item.Quantity,
				item.OptionSnapshot,
			}
			for col, value := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, row)
				if err != nil {
					return nil, err
				}
				if err := f.SetCellValue(ordersSheet, cell, value); err != nil {
					return nil, err
				}
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf, nil
}
