package handlers

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lablens/models"
	"lablens/session"
)

type InventoryHandler struct {
	model string
}

func NewInventoryHandler(model string) *InventoryHandler {
	return &InventoryHandler{model: model}
}

type inventoryResponse struct {
	Columns []string              `json:"columns"`
	Rows    []models.InventoryRow `json:"rows"`
}

func (h *InventoryHandler) List(c *gin.Context) {
	writeJSON(c, http.StatusOK, inventoryResponse{
		Columns: models.InventoryColumns,
		Rows:    currentSession(c).Rows(),
	})
}

func (h *InventoryHandler) Add(c *gin.Context) {
	var in session.RowInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := currentSession(c).AddRow(in)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, row)
}

func (h *InventoryHandler) Update(c *gin.Context) {
	var patch session.RowPatch
	if !bindJSON(c, &patch) {
		return
	}
	row, err := currentSession(c).UpdateRow(c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, row)
}

func (h *InventoryHandler) Delete(c *gin.Context) {
	if err := currentSession(c).DeleteRow(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reset clears the whole table.
func (h *InventoryHandler) Reset(c *gin.Context) {
	sess := currentSession(c)
	sess.Reset()
	writeJSON(c, http.StatusOK, inventoryResponse{
		Columns: models.InventoryColumns,
		Rows:    sess.Rows(),
	})
}

func (h *InventoryHandler) ExportCSV(c *gin.Context) {
	rows := currentSession(c).Rows()

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="inventory.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(models.InventoryColumns)
	for _, row := range rows {
		_ = w.Write([]string{row.Timestamp, row.ComponentName, row.Category, strconv.Itoa(row.Count), row.Confidence})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = c.Error(err)
	}
}

type metricsResponse struct {
	session.Metrics
	Model string `json:"model"`
}

func (h *InventoryHandler) Metrics(c *gin.Context) {
	writeJSON(c, http.StatusOK, metricsResponse{
		Metrics: currentSession(c).Metrics(),
		Model:   h.model,
	})
}
