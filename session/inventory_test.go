package session

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lablens/apierrors"
	"lablens/models"
)

func TestAppendDetected(t *testing.T) {
	s := newSession("token", fixedNow)
	existing, err := s.AddRow(RowInput{ComponentName: "Capacitor", Category: "Passive", Count: 3})
	require.NoError(t, err)
	before := s.Rows()

	acks := s.AppendDetected([]models.DetectedComponent{
		{ComponentName: "Resistor", Count: 5, Category: "Passive"},
		{ComponentName: "LED", Count: 2, Category: "Optical"},
	})

	assert.Equal(t, []Ack{
		{Status: "success", Added: "5 x Resistor"},
		{Status: "success", Added: "2 x LED"},
	}, acks)

	rows := s.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, existing, rows[0])
	assert.Equal(t, "Resistor", rows[1].ComponentName)
	assert.Equal(t, "Passive", rows[1].Category)
	assert.Equal(t, 5, rows[1].Count)
	assert.Equal(t, "LED", rows[2].ComponentName)
	assert.Equal(t, "Optical", rows[2].Category)
	assert.Equal(t, 2, rows[2].Count)
	for _, row := range rows[1:] {
		assert.Equal(t, "14:03:07", row.Timestamp)
		assert.Equal(t, models.ConfidenceHigh, row.Confidence)
		assert.NotEmpty(t, row.ID)
	}
	assert.NotEqual(t, rows[1].ID, rows[2].ID)

	// the snapshot taken before the append is untouched
	assert.Len(t, before, 1)
}

func TestAppendDetectedEmpty(t *testing.T) {
	s := newSession("token", fixedNow)

	acks := s.AppendDetected(nil)

	assert.Empty(t, acks)
	assert.Empty(t, s.Rows())
}

func TestAppendDetectedKeepsDuplicates(t *testing.T) {
	s := newSession("token", fixedNow)
	d := []models.DetectedComponent{{ComponentName: "LED", Count: 1, Category: "Optical"}}

	s.AppendDetected(d)
	s.AppendDetected(d)

	rows := s.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, 2, s.Metrics().TotalComponents)
	assert.Equal(t, 1, s.Metrics().UniqueTypes)
}

func TestAddRow(t *testing.T) {
	s := newSession("token", fixedNow)

	row, err := s.AddRow(RowInput{ComponentName: " Diode ", Category: "Semiconductor", Count: 4})
	require.NoError(t, err)
	assert.Equal(t, "Diode", row.ComponentName)
	assert.Equal(t, models.ConfidenceManual, row.Confidence)
	assert.Equal(t, "14:03:07", row.Timestamp)

	_, err = s.AddRow(RowInput{ComponentName: "", Count: 1})
	assert.Equal(t, http.StatusBadRequest, apierrors.StatusOf(err))

	_, err = s.AddRow(RowInput{ComponentName: "Diode", Count: 0})
	assert.Equal(t, http.StatusBadRequest, apierrors.StatusOf(err))

	assert.Len(t, s.Rows(), 1)
}

func TestUpdateRow(t *testing.T) {
	s := newSession("token", fixedNow)
	s.AppendDetected([]models.DetectedComponent{{ComponentName: "Resistor", Count: 5, Category: "Passive"}})
	id := s.Rows()[0].ID

	name := "Resistor 10k"
	count := 7
	row, err := s.UpdateRow(id, RowPatch{ComponentName: &name, Count: &count})
	require.NoError(t, err)
	assert.Equal(t, "Resistor 10k", row.ComponentName)
	assert.Equal(t, 7, row.Count)
	assert.Equal(t, "Passive", row.Category)
	assert.Equal(t, row, s.Rows()[0])

	zero := 0
	_, err = s.UpdateRow(id, RowPatch{Count: &zero})
	assert.Equal(t, http.StatusBadRequest, apierrors.StatusOf(err))
	assert.Equal(t, 7, s.Rows()[0].Count)

	_, err = s.UpdateRow("missing", RowPatch{Count: &count})
	assert.Equal(t, ErrRowNotFound, err)
}

func TestDeleteRow(t *testing.T) {
	s := newSession("token", fixedNow)
	s.AppendDetected([]models.DetectedComponent{
		{ComponentName: "A", Count: 1, Category: "x"},
		{ComponentName: "B", Count: 1, Category: "x"},
		{ComponentName: "C", Count: 1, Category: "x"},
	})
	rows := s.Rows()

	require.NoError(t, s.DeleteRow(rows[1].ID))

	left := s.Rows()
	require.Len(t, left, 2)
	assert.Equal(t, "A", left[0].ComponentName)
	assert.Equal(t, "C", left[1].ComponentName)
	assert.Equal(t, ErrRowNotFound, s.DeleteRow(rows[1].ID))
}

func TestResetIsIdempotent(t *testing.T) {
	s := newSession("token", fixedNow)
	s.AppendDetected([]models.DetectedComponent{{ComponentName: "A", Count: 1, Category: "x"}})

	s.Reset()
	assert.Empty(t, s.Rows())
	assert.NotNil(t, s.Rows())

	s.Reset()
	assert.Empty(t, s.Rows())
	assert.Equal(t, []string{"Timestamp", "Component Name", "Category", "Count", "Confidence"}, models.InventoryColumns)
}
