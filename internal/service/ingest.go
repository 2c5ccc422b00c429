package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ohm-grid/power-monitor/internal/domain"
)

// IngestService accepts batched gateway pushes. A malformed payload
// fails fast before any mutation; after that, failures are per-meter
// and never abort the rest of the batch.
type IngestService struct {
	meters      MeterStore
	gateway     *GatewayState
	meterMu     *sync.Mutex
	powerFactor float64
	now         func() time.Time
}

// Ingest validates the batch, applies it to the gateway state
// atomically, then persists each accepted reading. A store failure
// for one meter is logged and skipped; the next push overwrites it
// anyway.
func (s *IngestService) Ingest(batch domain.GatewayBatch) (domain.IngestResult, error) {
	if batch.Meters == nil {
		return domain.IngestResult{}, domain.ErrInvalidPayload
	}
	now := s.now()

	accepted, rejected := s.gateway.ApplyBatch(batch, now)

	result := domain.IngestResult{RejectedIDs: rejected}
	for _, id := range rejected {
		log.Warn().Str("meterId", id).Msg("unknown meter id in gateway push")
	}

	for _, entry := range batch.Meters {
		if entry.Online {
			result.OnlineMeters++
		}
	}

	for _, entry := range accepted {
		result.AcceptedCount++
		if err := s.persistReading(entry, now); err != nil {
			log.Error().Err(err).Str("meterId", entry.MeterID).Msg("meter update failed")
		}
	}

	log.Info().
		Int64("cycle", batch.CycleNumber).
		Int("accepted", result.AcceptedCount).
		Int("rejected", len(result.RejectedIDs)).
		Int("online", result.OnlineMeters).
		Msg("gateway push processed")
	return result, nil
}

func (s *IngestService) persistReading(entry domain.MeterReadingInput, now time.Time) error {
	// P = V * I * PF with a single configured power factor.
	watts := domain.RoundWatts(entry.Voltage * entry.Current * s.powerFactor)

	status := domain.StatusOffline
	if entry.Online {
		status = domain.StatusOnline
	}

	s.meterMu.Lock()
	defer s.meterMu.Unlock()
	_, err := s.meters.UpdateReading(
		entry.MeterID,
		domain.RoundWatts(entry.Voltage),
		domain.RoundCurrent(entry.Current),
		domain.RoundWatts(entry.ApparentPower),
		watts,
		status,
		entry.Consumer,
		now,
	)
	return err
}
