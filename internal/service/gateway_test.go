package service

import (
	"testing"
	"time"

	"github.com/ohm-grid/power-monitor/internal/domain"
)

func TestGatewaySnapshotBeforeFirstPush(t *testing.T) {
	g := NewGatewayState()
	snap := g.Snapshot(time.Now(), 30*time.Second)

	if snap.Status != "Inactive" {
		t.Errorf("status = %q, want Inactive before any data", snap.Status)
	}
	if len(snap.Meters) != 4 {
		t.Fatalf("snapshot meters = %d, want 4 fixed slots", len(snap.Meters))
	}
	for _, m := range snap.Meters {
		if m.Online {
			t.Errorf("%s online before any push", m.MeterID)
		}
		if m.LastSeenSeconds != -1 {
			t.Errorf("%s lastSeenSeconds = %d, want -1 for never seen", m.MeterID, m.LastSeenSeconds)
		}
	}
}

func TestGatewaySnapshotStaleness(t *testing.T) {
	g := NewGatewayState()
	pushAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	g.ApplyBatch(domain.GatewayBatch{
		CycleNumber: 5,
		Meters: []domain.MeterReadingInput{
			{MeterID: "A-001", Online: true, PacketCount: 17},
		},
	}, pushAt)

	// Within the staleness window the slot reads online.
	snap := g.Snapshot(pushAt.Add(10*time.Second), 30*time.Second)
	if snap.OnlineMeters != 1 {
		t.Errorf("onlineMeters = %d, want 1 within window", snap.OnlineMeters)
	}
	if snap.Status != "Active" {
		t.Errorf("status = %q, want Active shortly after a push", snap.Status)
	}

	// Past the window it reads offline even though the last flag was true.
	snap = g.Snapshot(pushAt.Add(45*time.Second), 30*time.Second)
	if snap.OnlineMeters != 0 {
		t.Errorf("onlineMeters = %d, want 0 past the window", snap.OnlineMeters)
	}
	if snap.Meters[0].PacketCount != 17 {
		t.Errorf("packetCount = %d, want 17", snap.Meters[0].PacketCount)
	}
}

func TestGatewaySnapshotSecondsSinceLastPush(t *testing.T) {
	g := NewGatewayState()
	pushAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	g.ApplyBatch(domain.GatewayBatch{CycleNumber: 1}, pushAt)

	snap := g.Snapshot(pushAt.Add(42*time.Second), 30*time.Second)
	if snap.SecondsSinceLastPush != 42 {
		t.Errorf("secondsSinceLastPush = %d, want 42 (age of the last push)", snap.SecondsSinceLastPush)
	}
	if !snap.LastDataReceived.Equal(pushAt) {
		t.Errorf("lastDataReceived = %v, want push time %v", snap.LastDataReceived, pushAt)
	}
}

func TestGatewayStateRejectsUnknownSlots(t *testing.T) {
	g := NewGatewayState()
	accepted, rejected := g.ApplyBatch(domain.GatewayBatch{
		CycleNumber: 1,
		Meters: []domain.MeterReadingInput{
			{MeterID: "A-001", Online: true},
			{MeterID: "B-777", Online: true},
		},
	}, time.Now())

	if len(accepted) != 1 || accepted[0].MeterID != "A-001" {
		t.Errorf("accepted = %v, want just A-001", accepted)
	}
	if len(rejected) != 1 || rejected[0] != "B-777" {
		t.Errorf("rejected = %v, want [B-777]", rejected)
	}
	if len(g.meters) != 4 {
		t.Errorf("slot count = %d, unknown IDs must not create slots", len(g.meters))
	}
}

func TestGatewayStateLastWriterWins(t *testing.T) {
	g := NewGatewayState()
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	g.ApplyBatch(domain.GatewayBatch{CycleNumber: 1, WifiConnected: true,
		Meters: []domain.MeterReadingInput{{MeterID: "A-001", Online: true}}}, t0)
	g.ApplyBatch(domain.GatewayBatch{CycleNumber: 2, WifiConnected: false,
		Meters: []domain.MeterReadingInput{{MeterID: "A-001", Online: false}}}, t0.Add(time.Second))

	snap := g.Snapshot(t0.Add(2*time.Second), time.Minute)
	if snap.CycleNumber != 2 {
		t.Errorf("cycleNumber = %d, want latest push's 2", snap.CycleNumber)
	}
	if snap.WifiConnected {
		t.Error("wifiConnected should reflect the latest push")
	}
	if snap.Meters[0].Online {
		t.Error("slot should reflect the latest push's online:false")
	}
}
