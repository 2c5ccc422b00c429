package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/ohm-grid/power-monitor/internal/domain"
	"github.com/ohm-grid/power-monitor/internal/repository"
)

// reportStore is the object-storage surface for uploaded reports.
// Implemented by cloud.S3Client.
type reportStore interface {
	UploadReport(key string, data []byte, contentType string) (string, error)
	ListReports(prefix string) ([]string, error)
}

// ExportService renders a cadence's usage logs as CSV and, when cloud
// services are enabled, uploads the report to S3.
type ExportService struct {
	repos *repository.Repos
	s3    reportStore
}

// CSV renders every log entry for the cadence, newest first.
func (e *ExportService) CSV(cadence domain.Cadence) ([]byte, error) {
	logs, err := e.repos.AllLogs(cadence)
	if err != nil {
		return nil, fmt.Errorf("load %s logs: %w", cadence, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"date", "streetInput", "toNext", "houseTotal", "powerLoss", "totalConsumed", "lossPercentage", "theftAlert"})
	for _, l := range logs {
		w.Write([]string{
			l.Bucket.Format(time.RFC3339),
			strconv.FormatFloat(l.StreetInput, 'f', 2, 64),
			strconv.FormatFloat(l.ToNext, 'f', 2, 64),
			strconv.FormatFloat(l.HouseTotal, 'f', 2, 64),
			strconv.FormatFloat(l.PowerLoss, 'f', 2, 64),
			strconv.FormatFloat(l.TotalConsumed, 'f', 2, 64),
			strconv.FormatFloat(l.LossPercentage, 'f', 1, 64),
			string(l.TheftAlert),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UploadEnabled reports whether S3 report upload is configured.
func (e *ExportService) UploadEnabled() bool { return e.s3 != nil }

// Upload renders the report and pushes it to S3, returning a
// presigned download URL.
func (e *ExportService) Upload(cadence domain.Cadence) (string, error) {
	data, err := e.CSV(cadence)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("usage-reports/%s-%s.csv", cadence, time.Now().Format("20060102-150405"))
	return e.s3.UploadReport(key, data, "text/csv")
}

// History lists the keys of previously uploaded reports for the
// cadence, as stored under the usage-reports/ prefix.
func (e *ExportService) History(cadence domain.Cadence) ([]string, error) {
	return e.s3.ListReports(fmt.Sprintf("usage-reports/%s-", cadence))
}
