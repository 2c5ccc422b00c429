package service

import (
	"time"

	"github.com/ohm-grid/power-monitor/internal/domain"
)

// StatusService serves the live-status and health reads. Both are
// best-effort snapshots: an empty store yields the zeroed evaluation,
// never an error.
type StatusService struct {
	meters     MeterStore
	gateway    *GatewayState
	staleAfter time.Duration
	now        func() time.Time
}

// MeterView is the per-meter slice of the live status response.
type MeterView struct {
	MeterID     string             `json:"meterId"`
	Name        string             `json:"name"`
	Owner       string             `json:"owner,omitempty"`
	Role        domain.MeterRole   `json:"type"`
	Watts       float64            `json:"watts"`
	Voltage     float64            `json:"voltage"`
	Current     float64            `json:"current"`
	Units       float64            `json:"units"`
	Status      domain.MeterStatus `json:"status"`
	Online      bool               `json:"online"`
	LastUpdated time.Time          `json:"lastUpdated"`
}

type LiveStatus struct {
	domain.Evaluation
	MeterStatus []MeterView     `json:"meterStatus"`
	Gateway     GatewaySnapshot `json:"gatewayStatus"`
	Timestamp   time.Time       `json:"timestamp"`
}

// LiveStatus evaluates the current meter readings and attaches the
// raw per-meter fields plus the gateway snapshot.
func (s *StatusService) LiveStatus() (LiveStatus, error) {
	meters, err := s.meters.ListMeters()
	if err != nil {
		return LiveStatus{}, err
	}

	now := s.now()
	out := LiveStatus{
		Evaluation: domain.Evaluate(meters),
		Gateway:    s.gateway.Snapshot(now, s.staleAfter),
		Timestamp:  now,
	}
	for _, m := range meters {
		out.MeterStatus = append(out.MeterStatus, MeterView{
			MeterID:     m.MeterID,
			Name:        m.Name,
			Owner:       m.Owner,
			Role:        m.Role,
			Watts:       domain.RoundWatts(m.Watts),
			Voltage:     domain.RoundWatts(m.Voltage),
			Current:     domain.RoundCurrent(m.Current),
			Units:       domain.RoundWatts(m.ApparentPower),
			Status:      m.Status,
			Online:      m.Online(),
			LastUpdated: m.LastUpdated,
		})
	}
	return out, nil
}

type GatewayHealth struct {
	CycleNumber          int64     `json:"cycleNumber"`
	WifiConnected        bool      `json:"wifiConnected"`
	LastUpdate           time.Time `json:"lastUpdate"`
	SecondsSinceLastPush int64     `json:"secondsSinceLastPush"`
}

type SystemHealth struct {
	Network      string        `json:"network"`
	Accuracy     float64       `json:"accuracy"`
	ActiveMeters int           `json:"activeMeters"`
	TotalMeters  int           `json:"totalMeters"`
	LastSync     time.Time     `json:"lastSync"`
	Gateway      GatewayHealth `json:"gateway"`
}

// Health aggregates online/total counts and the most recent sync
// time by scanning the meter store. No independent state.
func (s *StatusService) Health() (SystemHealth, error) {
	meters, err := s.meters.ListMeters()
	if err != nil {
		return SystemHealth{}, err
	}

	now := s.now()
	h := SystemHealth{TotalMeters: len(meters)}
	var lastSync time.Time
	for _, m := range meters {
		if m.Online() {
			h.ActiveMeters++
		}
		if m.LastUpdated.After(lastSync) {
			lastSync = m.LastUpdated
		}
	}
	if lastSync.IsZero() {
		lastSync = now
	}
	h.LastSync = lastSync

	switch {
	case h.TotalMeters == 0 || h.ActiveMeters == 0:
		h.Network = "Offline"
	case h.ActiveMeters == h.TotalMeters:
		h.Network = "Online"
	default:
		h.Network = "Partial"
	}
	if h.TotalMeters > 0 {
		h.Accuracy = domain.RoundPercent(float64(h.ActiveMeters) / float64(h.TotalMeters) * 100)
	}

	snap := s.gateway.Snapshot(now, s.staleAfter)
	h.Gateway = GatewayHealth{
		CycleNumber:          snap.CycleNumber,
		WifiConnected:        snap.WifiConnected,
		LastUpdate:           snap.LastDataReceived,
		SecondsSinceLastPush: snap.SecondsSinceLastPush,
	}
	return h, nil
}

// GatewayStatus exposes the raw gateway snapshot for the debug read.
func (s *StatusService) GatewayStatus() GatewaySnapshot {
	return s.gateway.Snapshot(s.now(), s.staleAfter)
}
