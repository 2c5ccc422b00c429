package service

import (
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/ohm-grid/power-monitor/internal/cloud"
	"github.com/ohm-grid/power-monitor/internal/config"
	"github.com/ohm-grid/power-monitor/internal/domain"
	"github.com/ohm-grid/power-monitor/internal/repository"
)

// MeterStore is the persistence surface the core mutates. Implemented
// by repository.Repos; tests substitute an in-memory fake.
type MeterStore interface {
	EnsureDefaults(meters []domain.Meter) error
	ListMeters() ([]domain.Meter, error)
	GetMeter(meterID string) (domain.Meter, error)
	UpdateReading(meterID string, voltage, current, apparentPower, watts float64, status domain.MeterStatus, owner string, now time.Time) (domain.Meter, error)
	MarkOffline(meterID string, now time.Time) error
}

// UsageLogStore receives the periodic loss snapshots.
type UsageLogStore interface {
	UpsertLogBucket(e domain.UsageLogEntry) error
}

type Services struct {
	Repos   *repository.Repos
	Gateway *GatewayState
	Ingest  *IngestService
	Logger  *UsageLogger
	Monitor *OfflineMonitor
	Status  *StatusService
	Export  *ExportService

	// meterMu serializes every read-then-write sequence on the meter
	// store across ingestion, the logging ticks and the offline sweep,
	// so a concurrent ingest cannot race an offline demotion.
	meterMu sync.Mutex
}

func New(db *sqlx.DB) *Services {
	repos := repository.New(db)
	s := &Services{Repos: repos}
	s.Gateway = NewGatewayState()

	var notifier *AlertNotifier
	if config.UseCloudServices() && config.SNSTopicArn() != "" {
		snsClient, err := cloud.NewSNSClient(config.AWSRegion(), config.SNSTopicArn())
		if err != nil {
			log.Error().Err(err).Msg("sns client init failed; alerts disabled")
		} else {
			notifier = NewAlertNotifier(snsClient)
		}
	}

	var s3Client *cloud.S3Client
	if config.UseCloudServices() {
		var err error
		s3Client, err = cloud.NewS3Client(config.AWSRegion(), config.S3Bucket())
		if err != nil {
			log.Error().Err(err).Msg("s3 client init failed; report upload disabled")
			s3Client = nil
		}
	}

	s.Ingest = &IngestService{
		meters:      repos,
		gateway:     s.Gateway,
		meterMu:     &s.meterMu,
		powerFactor: config.PowerFactor(),
		now:         time.Now,
	}
	s.Logger = &UsageLogger{
		meters:   repos,
		logs:     repos,
		meterMu:  &s.meterMu,
		notifier: notifier,
		now:      time.Now,
	}
	s.Monitor = &OfflineMonitor{
		meters:    repos,
		meterMu:   &s.meterMu,
		notifier:  notifier,
		threshold: config.OfflineThreshold(),
		now:       time.Now,
	}
	s.Status = &StatusService{
		meters:     repos,
		gateway:    s.Gateway,
		staleAfter: config.OfflineThreshold(),
		now:        time.Now,
	}
	s.Export = &ExportService{repos: repos}
	if s3Client != nil {
		// Assign only a live client: a typed-nil pointer in the
		// interface would defeat the UploadEnabled check.
		s.Export.s3 = s3Client
	}
	return s
}

// InitMeters seeds the four fixed meter rows before any ingestion or
// timer activity begins.
func (s *Services) InitMeters() error {
	return s.Repos.EnsureDefaults(domain.DefaultMeters(time.Now()))
}
