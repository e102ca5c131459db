package models

import (
	"time"
)

const (
	OutcomeSuccess        = "success"
	OutcomeEmpty          = "empty"
	OutcomeRateLimited    = "rate_limited"
	OutcomeProviderError  = "provider_error"
	OutcomeTransportError = "transport_error"
	OutcomeCanceled       = "canceled"
)

// ScanRecord is the audit entry written for every scan that reached the provider.
type ScanRecord struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	SessionID   string      `gorm:"index;size:36" json:"-"`
	StartedAt   time.Time   `json:"started_at"`
	DurationMs  int64       `json:"duration_ms"`
	Attempts    int         `json:"attempts"`
	Outcome     string      `gorm:"size:32" json:"outcome"`
	Error       string      `json:"error,omitempty"`
	ImageMIME   string      `gorm:"size:32" json:"image_mime"`
	ImageSHA256 string      `gorm:"size:64" json:"image_sha256"`
	Model       string      `gorm:"size:64" json:"model"`
	Detections  []Detection `gorm:"foreignKey:ScanID" json:"detections"`
	CreatedAt   time.Time   `json:"-"`
}
