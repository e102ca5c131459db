package session

import "lablens/models"

const noScanYet = "--:--"

type Metrics struct {
	TotalComponents int    `json:"total_components"`
	UniqueTypes     int    `json:"unique_types"`
	LastScan        string `json:"last_scan"`
	LastLatencyMs   *int64 `json:"last_latency_ms"`
}

// Metrics summarizes the inventory as shown on the dashboard panel.
func (s *Session) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return computeMetrics(s.inventory, s.lastLatency.Milliseconds())
}

func computeMetrics(rows []models.InventoryRow, latencyMs int64) Metrics {
	m := Metrics{LastScan: noScanYet}
	names := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		m.TotalComponents += row.Count
		names[row.ComponentName] = struct{}{}
	}
	m.UniqueTypes = len(names)
	if len(rows) > 0 {
		m.LastScan = rows[len(rows)-1].Timestamp
	}
	if latencyMs > 0 {
		m.LastLatencyMs = &latencyMs
	}
	return m
}
