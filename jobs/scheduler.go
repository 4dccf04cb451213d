// Package jobs runs the economy's background tasks on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"ryabank/models"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// PoolAuditor takes a snapshot of the pool ledger and verifies its audit chain
type PoolAuditor interface {
	Audit(ctx context.Context) (*models.PoolAudit, error)
}

// Scheduler runs periodic economy jobs in UTC
type Scheduler struct {
	cron      *cron.Cron
	auditor   PoolAuditor
	auditSpec string
}

// NewScheduler validates the audit schedule and builds a scheduler around it
func NewScheduler(auditor PoolAuditor, auditSpec string) (*Scheduler, error) {
	if _, err := cron.ParseStandard(auditSpec); err != nil {
		return nil, fmt.Errorf("invalid pool audit schedule %q: %w", auditSpec, err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		auditor:   auditor,
		auditSpec: auditSpec,
	}, nil
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.auditSpec, func() { s.RunPoolAudit(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule pool audit: %w", err)
	}

	s.cron.Start()
	log.WithField("poolAudit", s.auditSpec).Info("Job scheduler started")
	return nil
}

// RunPoolAudit performs one audit and logs the outcome
func (s *Scheduler) RunPoolAudit(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	audit, err := s.auditor.Audit(ctx)
	if err != nil {
		log.WithError(err).Error("[CRON] Pool audit failed")
		return
	}

	log.WithFields(log.Fields{
		"hard":          audit.Hard.String(),
		"soft":          audit.Soft.String(),
		"k":             audit.ConstantProduct.String(),
		"rate":          audit.Rate.StringFixed(4),
		"softSupply":    audit.SoftSupply.String(),
		"burnedTotal":   audit.BurnedTotal.String(),
		"chainVerified": audit.ChainVerified,
		"chainHead":     audit.ChainHead,
	}).Info("[CRON] Pool audit completed")

	if audit.HardFromSeed || audit.SoftFromSeed {
		log.WithFields(log.Fields{
			"hardFromSeed": audit.HardFromSeed,
			"softFromSeed": audit.SoftFromSeed,
		}).Warn("[CRON] Market pools are missing and being served from seed values")
	}
}

// Stop halts the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Job scheduler stopped")
}
