package models

const (
	ConfidenceHigh   = "High"
	ConfidenceManual = "Manual"

	// TimestampLayout renders the wall clock as HH:MM:SS.
	TimestampLayout = "15:04:05"
)

// InventoryColumns is the column schema of the inventory table, in display order.
var InventoryColumns = []string{"Timestamp", "Component Name", "Category", "Count", "Confidence"}

type InventoryRow struct {
	ID            string `json:"id"`
	Timestamp     string `json:"timestamp"`
	ComponentName string `json:"component_name"`
	Category      string `json:"category"`
	Count         int    `json:"count"`
	Confidence    string `json:"confidence"`
}
