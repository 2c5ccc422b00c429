package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// OfflineMonitor demotes meters that stop reporting. It is the only
// path that flips a meter Online -> Offline without an explicit
// online:false in a gateway push.
type OfflineMonitor struct {
	meters    MeterStore
	meterMu   *sync.Mutex
	notifier  *AlertNotifier
	threshold time.Duration
	now       func() time.Time
}

// Sweep scans for online meters whose last update is older than the
// threshold and marks them offline with zeroed readings, publishing a
// dropout alert per demotion. Returns the demoted meter IDs.
func (m *OfflineMonitor) Sweep() ([]string, error) {
	m.meterMu.Lock()
	defer m.meterMu.Unlock()

	meters, err := m.meters.ListMeters()
	if err != nil {
		return nil, err
	}

	now := m.now()
	var demoted []string
	for _, meter := range meters {
		if !meter.Online() {
			continue
		}
		stale := now.Sub(meter.LastUpdated)
		if stale <= m.threshold {
			continue
		}
		if err := m.meters.MarkOffline(meter.MeterID, now); err != nil {
			log.Error().Err(err).Str("meterId", meter.MeterID).Msg("offline demotion failed")
			continue
		}
		demoted = append(demoted, meter.MeterID)
		m.notifier.NotifyOffline(meter.MeterID, stale)
		log.Warn().
			Str("meterId", meter.MeterID).
			Dur("silentFor", stale).
			Msg("meter marked offline")
	}
	return demoted, nil
}

// Run sweeps on a fixed interval until the context is cancelled.
func (m *OfflineMonitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Dur("threshold", m.threshold).Msg("offline monitor started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Sweep(); err != nil {
				log.Error().Err(err).Msg("offline sweep failed")
			}
		}
	}
}
