package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ohm-grid/power-monitor/internal/domain"
)

// UsageLogger snapshots the loss evaluation into minute-bucketed log
// entries. Each cadence runs on its own ticker; a failed tick for one
// cadence never stops the other.
type UsageLogger struct {
	meters   MeterStore
	logs     UsageLogStore
	meterMu  *sync.Mutex
	notifier *AlertNotifier
	now      func() time.Time
}

// Snapshot performs one tick for a cadence: read the meters, evaluate,
// upsert into the current minute's bucket. Ticks landing in the same
// bucket converge to the same stored values.
func (l *UsageLogger) Snapshot(cadence domain.Cadence) error {
	l.meterMu.Lock()
	meters, err := l.meters.ListMeters()
	l.meterMu.Unlock()
	if err != nil {
		return fmt.Errorf("list meters: %w", err)
	}
	if len(meters) == 0 {
		return nil
	}

	eval := domain.Evaluate(meters)
	now := l.now()
	bucket := now.Truncate(time.Minute)

	entry := domain.UsageLogEntry{
		Bucket:      bucket,
		Cadence:     cadence,
		StreetInput: eval.StreetInputPower,
		ToNext:      eval.ToNextPower,
		HouseTotal:  eval.HouseTotalPower,
		PowerLoss:   eval.PowerLoss,
		TheftAlert:  eval.Classification,
		UpdatedAt:   now,
	}
	// Derived columns are always recomputed from the base fields being
	// written, never carried forward.
	entry.TotalConsumed = domain.RoundWatts(entry.ToNext + entry.HouseTotal)
	entry.LossPercentage = 0
	if entry.StreetInput > 0 {
		entry.LossPercentage = domain.RoundPercent(math.Abs(entry.PowerLoss) / entry.StreetInput * 100)
	}

	if err := l.logs.UpsertLogBucket(entry); err != nil {
		return fmt.Errorf("upsert %s log at %s: %w", cadence, bucket.Format(time.RFC3339), err)
	}

	l.notifier.Observe(eval, cadence)

	log.Debug().
		Str("cadence", string(cadence)).
		Time("bucket", bucket).
		Float64("powerLoss", entry.PowerLoss).
		Str("alert", string(entry.TheftAlert)).
		Msg("usage log snapshot")
	return nil
}

// Run drives one cadence until the context is cancelled. The ticker
// keeps the interval on monotonic time; bucket keys come from the
// wall clock inside Snapshot.
func (l *UsageLogger) Run(ctx context.Context, cadence domain.Cadence, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Str("cadence", string(cadence)).Dur("interval", interval).Msg("usage logger started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.Snapshot(cadence); err != nil {
				log.Error().Err(err).Str("cadence", string(cadence)).Msg("usage log tick failed")
			}
		}
	}
}
