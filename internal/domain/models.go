package domain

import "time"

type MeterRole string

const (
	RoleStreetInput MeterRole = "streetInput"
	RoleHouse       MeterRole = "house"
	RoleToNext      MeterRole = "toNext"
)

type MeterStatus string

const (
	StatusOnline  MeterStatus = "Online"
	StatusOffline MeterStatus = "Offline"
)

type AlertState string

const (
	NoTheft       AlertState = "No Theft"
	TheftDetected AlertState = "Theft Detected"
	SystemFault   AlertState = "System Fault"
	LightCutOff   AlertState = "Light Cut Off"
)

type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceMonthly Cadence = "monthly"
)

type Meter struct {
	ID            int64       `db:"id" json:"-"`
	MeterID       string      `db:"meter_id" json:"meterId"`
	Name          string      `db:"name" json:"name"`
	Owner         string      `db:"owner" json:"owner,omitempty"`
	Role          MeterRole   `db:"role" json:"type"`
	Voltage       float64     `db:"voltage" json:"voltage"`
	Current       float64     `db:"current" json:"current"`
	ApparentPower float64     `db:"apparent_power" json:"units"`
	Watts         float64     `db:"watts" json:"power"`
	Status        MeterStatus `db:"status" json:"status"`
	LastUpdated   time.Time   `db:"last_updated" json:"lastUpdated"`
}

func (m Meter) Online() bool { return m.Status == StatusOnline }

// UsageLogEntry is one snapshot of the loss evaluation, keyed by
// (bucket, cadence). TotalConsumed and LossPercentage are stored
// redundantly and recomputed from the base fields on every write.
type UsageLogEntry struct {
	ID             int64      `db:"id" json:"id"`
	Bucket         time.Time  `db:"bucket" json:"date"`
	Cadence        Cadence    `db:"cadence" json:"logType"`
	StreetInput    float64    `db:"street_input" json:"streetInput"`
	ToNext         float64    `db:"to_next" json:"toNext"`
	HouseTotal     float64    `db:"house_total" json:"houseTotal"`
	PowerLoss      float64    `db:"power_loss" json:"powerLoss"`
	TheftAlert     AlertState `db:"theft_alert" json:"theftAlert"`
	TotalConsumed  float64    `db:"total_consumed" json:"totalConsumed"`
	LossPercentage float64    `db:"loss_percentage" json:"lossPercentage"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// MeterReadingInput is a single meter's entry in a gateway push.
type MeterReadingInput struct {
	MeterID       string  `json:"meterId"`
	Voltage       float64 `json:"voltage"`
	Current       float64 `json:"current"`
	ApparentPower float64 `json:"apparentPower"`
	Energy        float64 `json:"energy"`
	Consumer      string  `json:"consumer"`
	Online        bool    `json:"online"`
	PacketCount   int64   `json:"packetCount"`
}

// GatewayBatch is the payload the ESP32 gateway pushes each cycle,
// either over HTTP or through the MQTT bridge.
type GatewayBatch struct {
	Meters        []MeterReadingInput `json:"meters"`
	CycleNumber   int64               `json:"cycleNumber"`
	WifiConnected bool                `json:"wifiConnected"`
}

// IngestResult reports a batch outcome. Rejected entries are counted
// per meter, never fatal to the rest of the batch.
type IngestResult struct {
	AcceptedCount int      `json:"acceptedCount"`
	RejectedIDs   []string `json:"rejectedIds,omitempty"`
	OnlineMeters  int      `json:"onlineMeters"`
}
