package repository

import (
	"time"

	"github.com/ohm-grid/power-monitor/internal/domain"
)

// UpsertLogBucket writes one snapshot into its (bucket, cadence) slot.
// Re-snapshots within the same bucket overwrite the base fields; the
// derived columns are always recomputed from the incoming values.
func (r *Repos) UpsertLogBucket(e domain.UsageLogEntry) error {
	_, err := r.db.Exec(`
		INSERT INTO usage_logs
			(bucket, cadence, street_input, to_next, house_total, power_loss, theft_alert, total_consumed, loss_percentage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (bucket, cadence) DO UPDATE SET
			street_input = EXCLUDED.street_input,
			to_next = EXCLUDED.to_next,
			house_total = EXCLUDED.house_total,
			power_loss = EXCLUDED.power_loss,
			theft_alert = EXCLUDED.theft_alert,
			total_consumed = EXCLUDED.total_consumed,
			loss_percentage = EXCLUDED.loss_percentage,
			updated_at = EXCLUDED.updated_at`,
		e.Bucket, e.Cadence, e.StreetInput, e.ToNext, e.HouseTotal,
		e.PowerLoss, e.TheftAlert, e.TotalConsumed, e.LossPercentage, e.UpdatedAt)
	return err
}

const logColumns = `id, bucket, cadence, street_input, to_next, house_total, power_loss, theft_alert, total_consumed, loss_percentage, created_at, updated_at`

// RecentLogs returns the newest entries for a cadence, oldest first
// so the dashboard can chart them left to right.
func (r *Repos) RecentLogs(cadence domain.Cadence, limit int) ([]domain.UsageLogEntry, error) {
	var out []domain.UsageLogEntry
	err := r.db.Select(&out, `
		SELECT `+logColumns+` FROM (
			SELECT `+logColumns+` FROM usage_logs
			WHERE cadence = $1 ORDER BY bucket DESC LIMIT $2
		) recent ORDER BY bucket ASC`, cadence, limit)
	return out, err
}

func (r *Repos) AllLogs(cadence domain.Cadence) ([]domain.UsageLogEntry, error) {
	var out []domain.UsageLogEntry
	err := r.db.Select(&out, `
		SELECT `+logColumns+` FROM usage_logs
		WHERE cadence = $1 ORDER BY bucket DESC`, cadence)
	return out, err
}

func (r *Repos) PaginatedLogs(cadence domain.Cadence, page, limit int) ([]domain.UsageLogEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	var out []domain.UsageLogEntry
	err := r.db.Select(&out, `
		SELECT `+logColumns+` FROM usage_logs
		WHERE cadence = $1 ORDER BY bucket DESC
		OFFSET $2 LIMIT $3`, cadence, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	err = r.db.Get(&total, `SELECT count(*) FROM usage_logs WHERE cadence = $1`, cadence)
	return out, total, err
}

func (r *Repos) LogsInRange(cadence domain.Cadence, start, end time.Time) ([]domain.UsageLogEntry, error) {
	var out []domain.UsageLogEntry
	err := r.db.Select(&out, `
		SELECT `+logColumns+` FROM usage_logs
		WHERE cadence = $1 AND bucket >= $2 AND bucket <= $3
		ORDER BY bucket DESC`, cadence, start, end)
	return out, err
}

func (r *Repos) GetLog(cadence domain.Cadence, id int64) (domain.UsageLogEntry, error) {
	var e domain.UsageLogEntry
	err := r.db.Get(&e, `
		SELECT `+logColumns+` FROM usage_logs
		WHERE id = $1 AND cadence = $2`, id, cadence)
	return e, err
}

func (r *Repos) SearchLogs(cadence domain.Cadence, alert domain.AlertState, limit int) ([]domain.UsageLogEntry, error) {
	var out []domain.UsageLogEntry
	err := r.db.Select(&out, `
		SELECT `+logColumns+` FROM usage_logs
		WHERE cadence = $1 AND theft_alert = $2
		ORDER BY bucket DESC LIMIT $3`, cadence, alert, limit)
	return out, err
}

func (r *Repos) DeleteLog(cadence domain.Cadence, id int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM usage_logs WHERE id = $1 AND cadence = $2`, id, cadence)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repos) DeleteAllLogs(cadence domain.Cadence) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM usage_logs WHERE cadence = $1`, cadence)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// LogStats aggregates a cadence's history for the stats endpoint.
type LogStats struct {
	TotalLogs    int64   `db:"total_logs" json:"totalLogs"`
	TheftCount   int64   `db:"theft_count" json:"theftDetectedCount"`
	FaultCount   int64   `db:"fault_count" json:"systemFaultCount"`
	AvgPowerLoss float64 `db:"avg_power_loss" json:"averagePowerLoss"`
	MaxPowerLoss float64 `db:"max_power_loss" json:"maxPowerLoss"`
	MinPowerLoss float64 `db:"min_power_loss" json:"minPowerLoss"`
}

func (r *Repos) CadenceStats(cadence domain.Cadence) (LogStats, error) {
	var s LogStats
	err := r.db.Get(&s, `
		SELECT
			count(*) AS total_logs,
			count(*) FILTER (WHERE theft_alert = $2) AS theft_count,
			count(*) FILTER (WHERE theft_alert = $3) AS fault_count,
			coalesce(avg(power_loss), 0) AS avg_power_loss,
			coalesce(max(power_loss), 0) AS max_power_loss,
			coalesce(min(power_loss), 0) AS min_power_loss
		FROM usage_logs WHERE cadence = $1`,
		cadence, domain.TheftDetected, domain.SystemFault)
	return s, err
}

// ChartPoint is the slim projection the dashboard charts consume.
type ChartPoint struct {
	Bucket     time.Time         `db:"bucket" json:"date"`
	PowerLoss  float64           `db:"power_loss" json:"powerLoss"`
	TheftAlert domain.AlertState `db:"theft_alert" json:"theftAlert"`
}

func (r *Repos) ChartLogs(cadence domain.Cadence, since time.Time) ([]ChartPoint, error) {
	var out []ChartPoint
	err := r.db.Select(&out, `
		SELECT bucket, power_loss, theft_alert FROM usage_logs
		WHERE cadence = $1 AND bucket >= $2
		ORDER BY bucket ASC`, cadence, since)
	return out, err
}
