package models

// DetectedComponent is decoded from one tool call of a model response.
// It is never stored as is: it becomes an InventoryRow and a Detection.
type DetectedComponent struct {
	ComponentName string `json:"component_name"`
	Count         int    `json:"count"`
	Category      string `json:"category"`
}
