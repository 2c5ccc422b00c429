package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ohm-grid/power-monitor/internal/domain"
)

// AlertPublisher is the notification sink for classification
// transitions and meter dropouts. Implemented by cloud.SNSClient.
type AlertPublisher interface {
	SendTheftAlert(classification string, powerLoss, lossPercentage float64) error
	SendOfflineAlert(meterID string, silentFor time.Duration) error
}

// AlertNotifier publishes a notification when the classification
// transitions into a theft or fault state. Repeated ticks in the same
// state stay silent; the consumer decides whether to investigate.
type AlertNotifier struct {
	mu        sync.Mutex
	publisher AlertPublisher
	lastState domain.AlertState
}

func NewAlertNotifier(publisher AlertPublisher) *AlertNotifier {
	return &AlertNotifier{publisher: publisher, lastState: domain.NoTheft}
}

// Observe records the latest evaluation. Safe to call on a nil
// notifier so a disabled cloud path costs nothing.
func (a *AlertNotifier) Observe(eval domain.Evaluation, cadence domain.Cadence) {
	if a == nil || cadence != domain.CadenceDaily {
		return
	}

	a.mu.Lock()
	changed := eval.Classification != a.lastState
	a.lastState = eval.Classification
	a.mu.Unlock()

	if !changed {
		return
	}
	if eval.Classification != domain.TheftDetected && eval.Classification != domain.SystemFault {
		return
	}

	if err := a.publisher.SendTheftAlert(string(eval.Classification), eval.PowerLoss, eval.LossPercentage); err != nil {
		log.Error().Err(err).Str("classification", string(eval.Classification)).Msg("alert publish failed")
		return
	}
	log.Info().Str("classification", string(eval.Classification)).Float64("powerLoss", eval.PowerLoss).Msg("alert published")
}

// NotifyOffline publishes a dropout notice for a demoted meter. Safe
// to call on a nil notifier.
func (a *AlertNotifier) NotifyOffline(meterID string, silentFor time.Duration) {
	if a == nil {
		return
	}
	if err := a.publisher.SendOfflineAlert(meterID, silentFor); err != nil {
		log.Error().Err(err).Str("meterId", meterID).Msg("offline alert publish failed")
		return
	}
	log.Info().Str("meterId", meterID).Dur("silentFor", silentFor).Msg("offline alert published")
}
