package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ohm-grid/power-monitor/internal/domain"
)

// fakeStore is an in-memory MeterStore + UsageLogStore standing in
// for the Postgres repository.
type fakeStore struct {
	mu     sync.Mutex
	meters map[string]domain.Meter
	logs   map[string]domain.UsageLogEntry

	updateErr error
	upsertErr error
	logWrites int
}

func newFakeStore() *fakeStore {
	fs := &fakeStore{
		meters: map[string]domain.Meter{},
		logs:   map[string]domain.UsageLogEntry{},
	}
	for _, m := range domain.DefaultMeters(time.Unix(0, 0)) {
		fs.meters[m.MeterID] = m
	}
	return fs
}

func (fs *fakeStore) EnsureDefaults(meters []domain.Meter) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, m := range meters {
		if _, ok := fs.meters[m.MeterID]; !ok {
			fs.meters[m.MeterID] = m
		}
	}
	return nil
}

func (fs *fakeStore) ListMeters() ([]domain.Meter, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var out []domain.Meter
	for _, id := range domain.SlotOrder() {
		if m, ok := fs.meters[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (fs *fakeStore) GetMeter(meterID string) (domain.Meter, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	m, ok := fs.meters[meterID]
	if !ok {
		return domain.Meter{}, domain.ErrUnknownMeter
	}
	return m, nil
}

func (fs *fakeStore) UpdateReading(meterID string, voltage, current, apparentPower, watts float64, status domain.MeterStatus, owner string, now time.Time) (domain.Meter, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.updateErr != nil {
		return domain.Meter{}, fs.updateErr
	}
	m, ok := fs.meters[meterID]
	if !ok {
		return domain.Meter{}, domain.ErrUnknownMeter
	}
	m.Voltage = voltage
	m.Current = current
	m.ApparentPower = apparentPower
	m.Watts = watts
	m.Status = status
	if owner != "" {
		m.Owner = owner
	}
	m.LastUpdated = now
	fs.meters[meterID] = m
	return m, nil
}

func (fs *fakeStore) MarkOffline(meterID string, now time.Time) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	m, ok := fs.meters[meterID]
	if !ok {
		return domain.ErrUnknownMeter
	}
	m.Voltage, m.Current, m.ApparentPower, m.Watts = 0, 0, 0, 0
	m.Status = domain.StatusOffline
	m.LastUpdated = now
	fs.meters[meterID] = m
	return nil
}

func logKey(bucket time.Time, cadence domain.Cadence) string {
	return fmt.Sprintf("%d/%s", bucket.Unix(), cadence)
}

func (fs *fakeStore) UpsertLogBucket(e domain.UsageLogEntry) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.upsertErr != nil {
		return fs.upsertErr
	}
	fs.logWrites++
	key := logKey(e.Bucket, e.Cadence)
	if existing, ok := fs.logs[key]; ok {
		e.ID = existing.ID
		e.CreatedAt = existing.CreatedAt
	} else {
		e.ID = int64(len(fs.logs) + 1)
	}
	fs.logs[key] = e
	return nil
}

func (fs *fakeStore) setMeter(m domain.Meter) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.meters[m.MeterID] = m
}

func (fs *fakeStore) meter(id string) domain.Meter {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.meters[id]
}

func (fs *fakeStore) logCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.logs)
}

var errStoreDown = errors.New("store unavailable")
