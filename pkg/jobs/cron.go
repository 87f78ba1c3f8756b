package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/voicelane/voicelane/pkg/analysis"
	"github.com/voicelane/voicelane/pkg/calls"
	"github.com/voicelane/voicelane/pkg/logger"
	"github.com/voicelane/voicelane/pkg/store"
)

const (
	pendingSweepBatchSize = 50
	inFlightBatchSize     = 100
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron     *cron.Cron
	store    *store.CallStore
	analyzer *analysis.Service
	calls    *calls.Service
	logger   logger.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(callStore *store.CallStore, analyzer *analysis.Service, callService *calls.Service, log logger.Logger) *CronManager {
	if log == nil {
		log = logger.Default()
	}

	return &CronManager{
		cron:     cron.New(),
		store:    callStore,
		analyzer: analyzer,
		calls:    callService,
		logger:   log,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	// Every 10 minutes: re-run analysis for calls that have a transcript but
	// no stored analysis. Picks up calls whose automatic analysis failed.
	_, err := cm.cron.AddFunc("*/10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		cm.SweepPendingAnalyses(ctx)
	})
	if err != nil {
		return err
	}

	// Every 5 minutes: poll providers for calls still in flight so stuck
	// records converge on a terminal status.
	_, err = cm.cron.AddFunc("*/5 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		cm.SyncInFlightCalls(ctx)
	})
	if err != nil {
		return err
	}

	cm.logger.Info("cron jobs configured",
		"pending_sweep", "*/10 * * * *", "call_sync", "*/5 * * * *")

	return nil
}

// SweepPendingAnalyses analyzes calls with a transcript and no analysis.
// Exposed for manual triggering and tests.
func (cm *CronManager) SweepPendingAnalyses(ctx context.Context) {
	records, err := cm.store.ListPendingAnalysis(ctx, pendingSweepBatchSize)
	if err != nil {
		cm.logger.Error("pending analysis sweep failed to list calls", "error", err)
		return
	}
	if len(records) == 0 {
		return
	}

	cm.logger.Info("sweeping pending analyses", "count", len(records))

	analyzed := 0
	for _, call := range records {
		if ctx.Err() != nil {
			return
		}
		if _, err := cm.analyzer.AnalyzeStored(ctx, call.ID); err != nil {
			cm.logger.Error("sweep analysis failed", "call_id", call.ID, "error", err)
			continue
		}
		analyzed++
	}

	cm.logger.Info("pending analysis sweep completed", "analyzed", analyzed, "total", len(records))
}

// SyncInFlightCalls polls providers for calls that have not reached a
// terminal status. Exposed for manual triggering and tests.
func (cm *CronManager) SyncInFlightCalls(ctx context.Context) {
	records, err := cm.store.ListInFlight(ctx, inFlightBatchSize)
	if err != nil {
		cm.logger.Error("call sync failed to list in-flight calls", "error", err)
		return
	}

	for _, call := range records {
		if ctx.Err() != nil {
			return
		}
		if err := cm.calls.SyncCall(ctx, call.ID); err != nil {
			cm.logger.Error("call sync failed", "call_id", call.ID, "error", err)
		}
	}
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.cron.Stop()
}
