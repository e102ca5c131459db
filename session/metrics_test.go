package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lablens/models"
)

func TestComputeMetrics(t *testing.T) {
	testCases := []struct {
		name    string
		rows    []models.InventoryRow
		latency int64
		want    Metrics
	}{
		{
			name: "empty inventory",
			want: Metrics{LastScan: "--:--"},
		},
		{
			name: "sums counts and distinct names",
			rows: []models.InventoryRow{
				{Timestamp: "10:00:00", ComponentName: "Resistor", Count: 5},
				{Timestamp: "10:00:00", ComponentName: "LED", Count: 2},
				{Timestamp: "10:05:00", ComponentName: "Resistor", Count: 3},
			},
			want: Metrics{TotalComponents: 10, UniqueTypes: 2, LastScan: "10:05:00"},
		},
		{
			name:    "reports latency",
			rows:    []models.InventoryRow{{Timestamp: "11:00:00", ComponentName: "LED", Count: 1}},
			latency: 120,
			want:    Metrics{TotalComponents: 1, UniqueTypes: 1, LastScan: "11:00:00", LastLatencyMs: int64Ptr(120)},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, computeMetrics(tc.rows, tc.latency))
		})
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}
