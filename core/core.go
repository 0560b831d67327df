// Package core has core logic for fetching, classifying and
// aggregating pull-request history.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/prpulse/prpulse/internal/contract"
	"github.com/prpulse/prpulse/internal/ghapi"
	"github.com/prpulse/prpulse/internal/output"
)

// lowQuotaThreshold triggers a pre-run warning when the remaining API
// quota is below it. The run still proceeds; the retry engine handles
// any limit actually hit.
const lowQuotaThreshold = 100

// ExecutorFunc defines the function signature for executing different
// analysis modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteAnalysis runs the full PR-history analysis and writes the
// report in the configured output format. It serves as the main entry
// point for the 'analyze' command.
func ExecuteAnalysis(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	service := ghapi.NewService(cfg, mgr.GetResponseStore())

	warnOnLowQuota(ctx, service)

	runStore := mgr.GetRunStore()
	var runID int64
	if runStore != nil {
		id, err := runStore.BeginRun(start.UTC(), cfg.Owner, cfg.Scope(), cfg.StartTime, cfg.EndTime)
		if err != nil {
			contract.LogWarn("run history", err)
		} else {
			runID = id
		}
	}

	report, err := NewAggregator(cfg, service).Run(ctx)
	if err != nil {
		return err
	}

	if runStore != nil && runID != 0 {
		if err := runStore.EndRun(runID, time.Now().UTC(), report.TotalPRs, report.TotalAssistedPRs); err != nil {
			contract.LogWarn("run history", err)
		}
	}

	duration := time.Since(start)
	return output.PrintReport(report, cfg, duration)
}

// warnOnLowQuota checks the remaining API quota before the run starts.
// Failures here are not fatal; an expired token surfaces on the first
// real request anyway.
func warnOnLowQuota(ctx context.Context, service *ghapi.Service) {
	status, err := service.CheckRateLimit(ctx)
	if err != nil {
		contract.LogWarn("rate limit check", err)
		return
	}
	if status.Remaining < lowQuotaThreshold {
		contract.LogWarn("rate limit", fmt.Errorf(
			"only %d of %d requests remaining, resets at %s",
			status.Remaining, status.Limit, status.Reset.Format(time.RFC3339)))
	}
}
