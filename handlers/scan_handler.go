package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lablens/apierrors"
	"lablens/models"
	"lablens/scan"
)

const (
	imageField = "image"

	// room for the multipart envelope around the image itself
	multipartOverhead = 64 << 10
)

// ScanHistory is the read side of the scan audit trail.
type ScanHistory interface {
	List(ctx context.Context, sessionID string, limit int) ([]models.ScanRecord, error)
	Get(ctx context.Context, sessionID string, id uint) (*models.ScanRecord, error)
}

type ScanHandler struct {
	workflow       *scan.Workflow
	history        ScanHistory
	maxUploadBytes int64
	log            logrus.FieldLogger
}

func NewScanHandler(workflow *scan.Workflow, history ScanHistory, maxUploadBytes int64, log logrus.FieldLogger) *ScanHandler {
	return &ScanHandler{
		workflow:       workflow,
		history:        history,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// ScanImage runs the uploaded image through the model and commits the detections.
func (h *ScanHandler) ScanImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	fh, err := c.FormFile(imageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, apierrors.New(http.StatusRequestEntityTooLarge, apierrors.CodeImageTooLarge,
				fmt.Sprintf("image exceeds the limit of %d bytes", h.maxUploadBytes), nil))
			return
		}
		writeError(c, apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidImage, "Upload an image in the \"image\" field", err))
		return
	}
	if fh.Size > h.maxUploadBytes {
		writeError(c, apierrors.New(http.StatusRequestEntityTooLarge, apierrors.CodeImageTooLarge,
			fmt.Sprintf("image exceeds the limit of %d bytes", h.maxUploadBytes), nil))
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidImage, "Unable to read the uploaded image", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		writeError(c, apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidImage, "Unable to read the uploaded image", err))
		return
	}

	result, err := h.workflow.Run(c.Request.Context(), currentSession(c), data)
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, result)
}

func (h *ScanHandler) GetScanResults(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	scans, err := h.history.List(c.Request.Context(), currentSession(c).Token, limit)
	if err != nil {
		h.log.WithError(err).Error("failed to fetch scan results")
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, scans)
}

func (h *ScanHandler) GetScanByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, apierrors.NotFound("Scan not found"))
		return
	}
	record, err := h.history.Get(c.Request.Context(), currentSession(c).Token, uint(id))
	if err != nil {
		writeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, record)
}

func (h *ScanHandler) ServeHTML(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title":         "LabLens Dashboard",
		"authenticated": authenticated(c),
	})
}
