package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/loomshop/loomshop-backend/internal/app/service"
	"github.com/loomshop/loomshop-backend/pkg/logger"
)

// RepriceScheduler recomputes derived bundle pricing on a cron schedule
// so member product price edits propagate to bundles overnight.
type RepriceScheduler struct {
	cron          *cron.Cron
	upsellService service.UpsellService
	spec          string
}

func NewRepriceScheduler(upsellService service.UpsellService, spec string) *RepriceScheduler {
	return &RepriceScheduler{
		cron:          cron.New(),
		upsellService: upsellService,
		spec:          spec,
	}
}

func (s *RepriceScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		logger.Info("Starting scheduled upsell reprice", nil)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		changed, err := s.upsellService.RepriceAll(ctx)
		if err != nil {
			logger.Error("Scheduled upsell reprice failed", err)
			return
		}

		logger.Info("Scheduled upsell reprice finished", map[string]interface{}{
			"changed": changed,
		})
	})
	if err != nil {
		logger.Error("Failed to register reprice cron job", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Upsell reprice scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

func (s *RepriceScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Upsell reprice scheduler stopped", nil)
}
