package service

import (
	"testing"

	"github.com/ohm-grid/power-monitor/internal/domain"
)

type fakeReportStore struct {
	keys       []string
	lastPrefix string
}

func (f *fakeReportStore) UploadReport(key string, data []byte, contentType string) (string, error) {
	f.keys = append(f.keys, key)
	return "https://example.com/" + key, nil
}

func (f *fakeReportStore) ListReports(prefix string) ([]string, error) {
	f.lastPrefix = prefix
	return f.keys, nil
}

func TestExportHistoryScopedToCadence(t *testing.T) {
	rs := &fakeReportStore{keys: []string{
		"usage-reports/daily-20260301-120000.csv",
		"usage-reports/daily-20260302-120000.csv",
	}}
	e := &ExportService{s3: rs}

	keys, err := e.History(domain.CadenceDaily)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if rs.lastPrefix != "usage-reports/daily-" {
		t.Errorf("listed prefix = %q, want usage-reports/daily-", rs.lastPrefix)
	}
	if len(keys) != 2 {
		t.Errorf("keys = %v, want both daily reports", keys)
	}

	if _, err := e.History(domain.CadenceMonthly); err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if rs.lastPrefix != "usage-reports/monthly-" {
		t.Errorf("listed prefix = %q, want usage-reports/monthly-", rs.lastPrefix)
	}
}

func TestExportUploadDisabledWithoutStore(t *testing.T) {
	e := &ExportService{}
	if e.UploadEnabled() {
		t.Error("UploadEnabled() = true without a report store")
	}
}
