package model

import (
	"time"
)

// Run is the persisted outcome of one benchmark run.
type Run struct {
	ID               string `gorm:"primaryKey;size:36" json:"id"`
	ICCID            string `gorm:"index;column:iccid" json:"iccid"`
	IMSI             string `gorm:"index;column:imsi" json:"imsi"`
	SubscriberStatus string `json:"subscriber_status"` // ready, active
	AccessTechnology string `json:"access_technology"` // GSM, UMTS, EUTRAN
	PortName         string `json:"port_name"`

	Manufacturer string `json:"manufacturer"`
	ModemModel   string `json:"modem_model"`
	Revision     string `json:"revision"`
	SerialNumber string `json:"serial_number"`

	Network          string `json:"network"`      // Operator as reported by COPS
	Signal           string `json:"signal"`       // Formatted CSQ
	Registration     string `json:"registration"` // Home Network, Roaming
	Ticks            int    `json:"ticks"`
	Recoveries       int    `json:"recoveries"`
	ContextActivated bool   `json:"context_activated"`
	Online           bool   `json:"online"`

	CacheClearedAt      *time.Time `json:"cache_cleared_at,omitempty"`
	RegisteredAt        *time.Time `json:"registered_at,omitempty"`
	ContextActivatedAt  *time.Time `json:"context_activated_at,omitempty"`
	OnlineAt            *time.Time `json:"online_at,omitempty"`
	RegistrationLatency int64      `json:"registration_latency_ms"` // Milliseconds, 0 when not reached
	OnlineLatency       int64      `json:"online_latency_ms"`

	State     string    `gorm:"index" json:"state"` // done, failed, or the phase still running
	FailedAt  string    `json:"failed_step,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
