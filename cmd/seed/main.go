package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/loomshop/loomshop-backend/config"
	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/internal/app/repository"
	"github.com/loomshop/loomshop-backend/internal/app/service"
	"github.com/loomshop/loomshop-backend/internal/db"
)

// Imports a product catalog from an XLSX workbook. Expected columns:
// name, slug, description, base_price, discount_percentage, image_url,
// display_order. The first row is the header.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, skipped, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Products to import: %d (skipped %d rows)\n", len(products), skipped)
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	productRepo := repository.NewProductRepository(db.GetDB(), cfg.Catalog.LookupBatch)
	imported := 0
	for i := range products {
		if err := productRepo.Create(&products[i]); err != nil {
			fmt.Printf("Failed to import %q: %v\n", products[i].Slug, err)
			continue
		}
		imported++
	}

	fmt.Printf("Import completed: %d of %d products\n", imported, len(products))
}

func readProductsFromXLSX(filePath string) ([]model.Product, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	seenSlugs := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 4 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		slug := strings.TrimSpace(row[1])
		description := strings.TrimSpace(cell(row, 2))
		basePriceStr := strings.TrimSpace(cell(row, 3))
		discountStr := strings.TrimSpace(cell(row, 4))
		imageURL := strings.TrimSpace(cell(row, 5))
		displayOrderStr := strings.TrimSpace(cell(row, 6))

		if name == "" || slug == "" || seenSlugs[slug] {
			skipped++
			continue
		}

		basePrice, err := strconv.ParseFloat(basePriceStr, 64)
		if err != nil || basePrice < 0 {
			skipped++
			continue
		}

		discount := 0.0
		if discountStr != "" {
			if d, err := strconv.ParseFloat(discountStr, 64); err == nil {
				discount = d
			}
		}

		displayOrder := 0
		if displayOrderStr != "" {
			if n, err := strconv.Atoi(displayOrderStr); err == nil {
				displayOrder = n
			}
		}

		pricing := model.PricingTriple{
			BasePrice:          service.Round2(basePrice),
			DiscountPercentage: discount,
		}
		if discount > 0 && discount < 100 {
			pricing.SalePrice = service.CharmPrice(pricing.BasePrice * (1 - discount/100))
		}

		seenSlugs[slug] = true
		products = append(products, model.Product{
			Name:        name,
			Slug:        slug,
			Description: description,
			Pricing:     pricing,
			MainImageURL:    imageURL,
			ChainingEnabled: true,
			IsActive:        true,
			DisplayOrder:    displayOrder,
		})
	}

	return products, skipped, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
