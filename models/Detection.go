package models

// Detection is one component recognized by a scan, persisted with its ScanRecord.
type Detection struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ScanID        uint   `gorm:"index" json:"scan_id"`
	Position      int    `json:"position"`
	ComponentName string `json:"component_name"`
	Category      string `json:"category"`
	Count         int    `json:"count"`
}
