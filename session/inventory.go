package session

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"lablens/apierrors"
	"lablens/models"
)

// Ack acknowledges one appended detection.
type Ack struct {
	Status string `json:"status"`
	Added  string `json:"added"`
}

type RowInput struct {
	ComponentName string `json:"component_name"`
	Category      string `json:"category"`
	Count         int    `json:"count"`
	Confidence    string `json:"confidence"`
}

// RowPatch holds the fields to change on a row, nil fields are kept.
type RowPatch struct {
	ComponentName *string `json:"component_name"`
	Category      *string `json:"category"`
	Count         *int    `json:"count"`
	Confidence    *string `json:"confidence"`
}

// Rows returns a copy of the inventory in display order.
func (s *Session) Rows() []models.InventoryRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]models.InventoryRow, len(s.inventory))
	copy(rows, s.inventory)
	return rows
}

// AppendDetected appends one row per detected component, all under one lock,
// so a scan is either fully visible or not at all.
func (s *Session) AppendDetected(detected []models.DetectedComponent) []Ack {
	if len(detected) == 0 {
		return []Ack{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	timestamp := s.now().Format(models.TimestampLayout)
	next := make([]models.InventoryRow, len(s.inventory), len(s.inventory)+len(detected))
	copy(next, s.inventory)
	acks := make([]Ack, 0, len(detected))
	for _, d := range detected {
		next = append(next, models.InventoryRow{
			ID:            uuid.NewString(),
			Timestamp:     timestamp,
			ComponentName: d.ComponentName,
			Category:      d.Category,
			Count:         d.Count,
			Confidence:    models.ConfidenceHigh,
		})
		acks = append(acks, Ack{Status: "success", Added: fmt.Sprintf("%d x %s", d.Count, d.ComponentName)})
	}
	s.inventory = next
	return acks
}

// AddRow appends a manually entered row.
func (s *Session) AddRow(in RowInput) (models.InventoryRow, error) {
	if err := validateRow(in.ComponentName, in.Count); err != nil {
		return models.InventoryRow{}, err
	}
	confidence := in.Confidence
	if confidence == "" {
		confidence = models.ConfidenceManual
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row := models.InventoryRow{
		ID:            uuid.NewString(),
		Timestamp:     s.now().Format(models.TimestampLayout),
		ComponentName: strings.TrimSpace(in.ComponentName),
		Category:      strings.TrimSpace(in.Category),
		Count:         in.Count,
		Confidence:    confidence,
	}
	s.inventory = append(s.inventory[:len(s.inventory):len(s.inventory)], row)
	return row, nil
}

// UpdateRow applies patch to the row with the given id.
func (s *Session) UpdateRow(id string, patch RowPatch) (models.InventoryRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.InventoryRow{}, ErrRowNotFound
	}

	row := s.inventory[idx]
	if patch.ComponentName != nil {
		row.ComponentName = strings.TrimSpace(*patch.ComponentName)
	}
	if patch.Category != nil {
		row.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Count != nil {
		row.Count = *patch.Count
	}
	if patch.Confidence != nil {
		row.Confidence = *patch.Confidence
	}
	if err := validateRow(row.ComponentName, row.Count); err != nil {
		return models.InventoryRow{}, err
	}

	next := make([]models.InventoryRow, len(s.inventory))
	copy(next, s.inventory)
	next[idx] = row
	s.inventory = next
	return row, nil
}

func (s *Session) DeleteRow(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrRowNotFound
	}

	next := make([]models.InventoryRow, 0, len(s.inventory)-1)
	next = append(next, s.inventory[:idx]...)
	next = append(next, s.inventory[idx+1:]...)
	s.inventory = next
	return nil
}

// Reset empties the inventory. Resetting an empty inventory is a no-op.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory = []models.InventoryRow{}
}

func (s *Session) indexOf(id string) int {
	for i := range s.inventory {
		if s.inventory[i].ID == id {
			return i
		}
	}
	return -1
}

func validateRow(name string, count int) error {
	if strings.TrimSpace(name) == "" {
		return apierrors.BadRequest("component_name is required", nil)
	}
	if count <= 0 {
		return apierrors.BadRequest(fmt.Sprintf("count must be a positive integer, got %d", count), nil)
	}
	return nil
}
