package service

import (
	"sync"
	"testing"
	"time"

	"github.com/ohm-grid/power-monitor/internal/domain"
)

func newOfflineMonitor(fs *fakeStore, now time.Time, threshold time.Duration) *OfflineMonitor {
	var mu sync.Mutex
	return &OfflineMonitor{
		meters:    fs,
		meterMu:   &mu,
		threshold: threshold,
		now:       func() time.Time { return now },
	}
}

func TestSweepDemotesStaleMeter(t *testing.T) {
	fs := newFakeStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	stale := fs.meter("A-003")
	stale.Status = domain.StatusOnline
	stale.Voltage, stale.Current, stale.Watts = 230, 4, 920
	stale.LastUpdated = now.Add(-3 * time.Minute)
	fs.setMeter(stale)

	fresh := fs.meter("A-004")
	fresh.Status = domain.StatusOnline
	fresh.Voltage, fresh.Current, fresh.Watts = 229, 3, 687
	fresh.LastUpdated = now.Add(-30 * time.Second)
	fs.setMeter(fresh)

	monitor := newOfflineMonitor(fs, now, 2*time.Minute)
	demoted, err := monitor.Sweep()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(demoted) != 1 || demoted[0] != "A-003" {
		t.Errorf("demoted = %v, want [A-003]", demoted)
	}

	got := fs.meter("A-003")
	if got.Status != domain.StatusOffline {
		t.Errorf("stale meter status = %q, want Offline", got.Status)
	}
	if got.Voltage != 0 || got.Current != 0 || got.Watts != 0 {
		t.Errorf("stale meter readings not zeroed: %v/%v/%v", got.Voltage, got.Current, got.Watts)
	}
	if !got.LastUpdated.Equal(now) {
		t.Errorf("lastUpdated = %v, want sweep time %v", got.LastUpdated, now)
	}

	// A meter updated within the threshold is untouched.
	if got := fs.meter("A-004"); got.Status != domain.StatusOnline || got.Watts != 687 {
		t.Errorf("fresh meter mutated: %+v", got)
	}
}

func TestSweepIgnoresOfflineMeters(t *testing.T) {
	fs := newFakeStore()
	now := time.Now()

	m := fs.meter("A-001")
	m.Status = domain.StatusOffline
	m.LastUpdated = now.Add(-time.Hour)
	fs.setMeter(m)

	monitor := newOfflineMonitor(fs, now, 2*time.Minute)
	demoted, err := monitor.Sweep()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(demoted) != 0 {
		t.Errorf("demoted = %v, want none for already-offline meters", demoted)
	}
}

func TestSweepPublishesOfflineAlerts(t *testing.T) {
	fs := newFakeStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"A-001", "A-004"} {
		m := fs.meter(id)
		m.Status = domain.StatusOnline
		m.LastUpdated = now.Add(-5 * time.Minute)
		fs.setMeter(m)
	}

	pub := &fakePublisher{}
	monitor := newOfflineMonitor(fs, now, 2*time.Minute)
	monitor.notifier = NewAlertNotifier(pub)

	demoted, err := monitor.Sweep()
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(demoted) != 2 {
		t.Fatalf("demoted = %v, want two meters", demoted)
	}
	if len(pub.offline) != 2 {
		t.Fatalf("offline alerts = %v, want one per demoted meter", pub.offline)
	}
	for i, id := range demoted {
		if pub.offline[i] != id {
			t.Errorf("offline[%d] = %q, want %q", i, pub.offline[i], id)
		}
	}
}

func TestSweepThresholdExclusive(t *testing.T) {
	fs := newFakeStore()
	now := time.Now()

	m := fs.meter("A-005")
	m.Status = domain.StatusOnline
	m.LastUpdated = now.Add(-2 * time.Minute)
	fs.setMeter(m)

	// Exactly at the threshold is not yet stale.
	monitor := newOfflineMonitor(fs, now, 2*time.Minute)
	demoted, _ := monitor.Sweep()
	if len(demoted) != 0 {
		t.Errorf("meter at exactly the threshold demoted: %v", demoted)
	}
}
