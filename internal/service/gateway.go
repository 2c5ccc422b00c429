package service

import (
	"sync"
	"time"

	"github.com/ohm-grid/power-monitor/internal/domain"
)

// meterLiveState is the advisory, process-lifetime view of one meter
// slot. Rebuilt from zero on restart; the meter store stays
// authoritative.
type meterLiveState struct {
	lastSeen    time.Time
	online      bool
	packetCount int64
}

// GatewayState holds the last push's telemetry from the ESP32
// gateway: per-slot liveness plus the cycle counter and WiFi flag.
// A single mutex guards the whole struct; updates are
// overwrite-by-latest.
type GatewayState struct {
	mu               sync.Mutex
	meters           map[string]*meterLiveState
	cycleNumber      int64
	wifiConnected    bool
	lastDataReceived time.Time
}

func NewGatewayState() *GatewayState {
	g := &GatewayState{meters: map[string]*meterLiveState{}}
	for _, id := range domain.SlotOrder() {
		g.meters[id] = &meterLiveState{}
	}
	return g
}

// ApplyBatch applies a validated push in one critical section: known
// entries update their slot, unknown IDs are collected as rejects,
// and the cycle counter and last-received stamp advance regardless of
// how the individual store writes fare afterwards.
func (g *GatewayState) ApplyBatch(batch domain.GatewayBatch, now time.Time) (accepted []domain.MeterReadingInput, rejected []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, entry := range batch.Meters {
		slot, ok := g.meters[entry.MeterID]
		if !ok {
			rejected = append(rejected, entry.MeterID)
			continue
		}
		slot.lastSeen = now
		slot.online = entry.Online
		slot.packetCount = entry.PacketCount
		accepted = append(accepted, entry)
	}

	g.cycleNumber = batch.CycleNumber
	g.wifiConnected = batch.WifiConnected
	g.lastDataReceived = now
	return accepted, rejected
}

// MeterLiveView is the per-slot part of a gateway snapshot.
type MeterLiveView struct {
	MeterID         string `json:"meterId"`
	Online          bool   `json:"online"`
	LastSeenSeconds int64  `json:"lastSeenSeconds"`
	PacketCount     int64  `json:"packetCount"`
}

// GatewaySnapshot is a point-in-time copy of the gateway state for
// the status and health reads.
type GatewaySnapshot struct {
	CycleNumber          int64           `json:"cycleNumber"`
	WifiConnected        bool            `json:"wifiConnected"`
	LastDataReceived     time.Time       `json:"lastDataReceived"`
	SecondsSinceLastPush int64           `json:"secondsSinceLastPush"`
	Status               string          `json:"status"`
	OnlineMeters         int             `json:"onlineMeters"`
	Meters               []MeterLiveView `json:"meters"`
}

// Snapshot copies the state out under the lock. A slot that has not
// reported within staleAfter reads as offline even if the gateway
// last flagged it online.
func (g *GatewayState) Snapshot(now time.Time, staleAfter time.Duration) GatewaySnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := GatewaySnapshot{
		CycleNumber:      g.cycleNumber,
		WifiConnected:    g.wifiConnected,
		LastDataReceived: g.lastDataReceived,
	}
	if !g.lastDataReceived.IsZero() {
		snap.SecondsSinceLastPush = int64(now.Sub(g.lastDataReceived).Seconds())
	}
	if snap.SecondsSinceLastPush < 60 && !g.lastDataReceived.IsZero() {
		snap.Status = "Active"
	} else {
		snap.Status = "Inactive"
	}

	for _, id := range domain.SlotOrder() {
		slot := g.meters[id]
		view := MeterLiveView{
			MeterID:         id,
			PacketCount:     slot.packetCount,
			LastSeenSeconds: -1,
		}
		if !slot.lastSeen.IsZero() {
			view.LastSeenSeconds = int64(now.Sub(slot.lastSeen).Seconds())
			view.Online = slot.online && now.Sub(slot.lastSeen) <= staleAfter
		}
		if view.Online {
			snap.OnlineMeters++
		}
		snap.Meters = append(snap.Meters, view)
	}
	return snap
}
