package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ohm-grid/power-monitor/internal/domain"
)

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

// EnsureDefaults seeds the fixed meter rows, create-if-absent. An
// existing row keeps its accumulated state.
func (r *Repos) EnsureDefaults(meters []domain.Meter) error {
	for _, m := range meters {
		_, err := r.db.Exec(`
			INSERT INTO meters (meter_id, name, role, status, last_updated)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (meter_id) DO NOTHING`,
			m.MeterID, m.Name, m.Role, m.Status, m.LastUpdated)
		if err != nil {
			return fmt.Errorf("seed meter %s: %w", m.MeterID, err)
		}
	}
	return nil
}

// ListMeters returns all meters in role-assignment order: street
// input first, houses, then the next-street feed.
func (r *Repos) ListMeters() ([]domain.Meter, error) {
	var out []domain.Meter
	err := r.db.Select(&out, `
		SELECT id, meter_id, name, owner, role, voltage, current, apparent_power, watts, status, last_updated
		FROM meters
		ORDER BY CASE role
			WHEN 'streetInput' THEN 0
			WHEN 'house' THEN 1
			ELSE 2
		END, meter_id`)
	return out, err
}

func (r *Repos) GetMeter(meterID string) (domain.Meter, error) {
	var m domain.Meter
	err := r.db.Get(&m, `
		SELECT id, meter_id, name, owner, role, voltage, current, apparent_power, watts, status, last_updated
		FROM meters WHERE meter_id = $1`, meterID)
	if errors.Is(err, sql.ErrNoRows) {
		return m, domain.ErrUnknownMeter
	}
	return m, err
}

// UpdateReading overwrites a meter's instantaneous readings wholesale.
// Owner is only replaced when a non-empty value is supplied.
func (r *Repos) UpdateReading(meterID string, voltage, current, apparentPower, watts float64, status domain.MeterStatus, owner string, now time.Time) (domain.Meter, error) {
	var m domain.Meter
	err := r.db.Get(&m, `
		UPDATE meters SET
			voltage = $2,
			current = $3,
			apparent_power = $4,
			watts = $5,
			status = $6,
			owner = CASE WHEN $7 <> '' THEN $7 ELSE owner END,
			last_updated = $8
		WHERE meter_id = $1
		RETURNING id, meter_id, name, owner, role, voltage, current, apparent_power, watts, status, last_updated`,
		meterID, voltage, current, apparentPower, watts, status, owner, now)
	if errors.Is(err, sql.ErrNoRows) {
		return m, domain.ErrUnknownMeter
	}
	return m, err
}

// MarkOffline demotes a meter and zeroes its readings after the
// inactivity timeout.
func (r *Repos) MarkOffline(meterID string, now time.Time) error {
	res, err := r.db.Exec(`
		UPDATE meters SET
			voltage = 0, current = 0, apparent_power = 0, watts = 0,
			status = $2, last_updated = $3
		WHERE meter_id = $1`,
		meterID, domain.StatusOffline, now)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUnknownMeter
	}
	return nil
}
