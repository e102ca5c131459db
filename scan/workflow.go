package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"lablens/apierrors"
	"lablens/inference"
	"lablens/models"
	"lablens/session"
)

const (
	MessageComplete     = "Complete!"
	MessageNoComponents = "No components identified."
)

var acceptedMIMETypes = []string{"image/jpeg", "image/png"}

// Recorder keeps the audit trail of scans.
type Recorder interface {
	Record(ctx context.Context, rec *models.ScanRecord) error
}

// Failure is a scan that failed after raising warnings, such as rate limit retries.
type Failure struct {
	Err      apierrors.APIError
	Warnings []string
}

func (f *Failure) Error() string {
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

type Result struct {
	Outcome   string              `json:"outcome"`
	Message   string              `json:"message"`
	Added     []session.Ack       `json:"added"`
	Skipped   []inference.Skipped `json:"skipped,omitempty"`
	Warnings  []string            `json:"warnings,omitempty"`
	Attempts  int                 `json:"attempts"`
	LatencyMs int64               `json:"latency_ms"`
	ScanID    uint                `json:"scan_id,omitempty"`
}

// Workflow sends an uploaded image to the model and commits what it recognized
// to the session inventory.
type Workflow struct {
	generator     inference.Generator
	retrier       *inference.Retrier
	recorder      Recorder
	model         string
	maxImageBytes int64
	log           logrus.FieldLogger
	now           func() time.Time
}

type Options struct {
	Model         string
	MaxImageBytes int64
	Recorder      Recorder
}

func NewWorkflow(generator inference.Generator, retrier *inference.Retrier, opts Options, log logrus.FieldLogger) *Workflow {
	return &Workflow{
		generator:     generator,
		retrier:       retrier,
		recorder:      opts.Recorder,
		model:         opts.Model,
		maxImageBytes: opts.MaxImageBytes,
		log:           log,
		now:           time.Now,
	}
}

// Run scans one image for sess. On any error the inventory is left untouched.
// A response without detections is not an error: the result has outcome "empty".
func (w *Workflow) Run(ctx context.Context, sess *session.Session, data []byte) (*Result, error) {
	if err := sess.BeginScan(); err != nil {
		return nil, err
	}
	var latency time.Duration
	defer func() { sess.EndScan(latency) }()

	img, err := w.validateImage(data)
	if err != nil {
		return nil, err
	}
	credential, err := sess.Credential()
	if err != nil {
		return nil, err
	}

	log := w.log.WithField("session", shortToken(sess.Token))
	result := &Result{Added: []session.Ack{}}
	rec := &models.ScanRecord{
		SessionID:   sess.Token,
		StartedAt:   w.now(),
		ImageMIME:   img.MIMEType,
		ImageSHA256: digest(img.Data),
		Model:       w.model,
	}

	onRateLimit := func(attempt, maxAttempts int, err error, retrying bool) {
		if retrying {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Rate limit. Retrying... (%d/%d)", attempt, maxAttempts))
			log.WithError(err).Warnf("rate limited, retrying (%d/%d)", attempt, maxAttempts)
			return
		}
		result.Warnings = append(result.Warnings, fmt.Sprintf("Rate limit. Giving up after %d attempts.", attempt))
		log.WithError(err).Warnf("rate limited, giving up after %d attempts", attempt)
	}

	start := time.Now()
	resp, attempts, err := w.retrier.Do(ctx, func(ctx context.Context) (*inference.Response, error) {
		return w.generator.Generate(ctx, credential, img)
	}, onRateLimit)
	latency = time.Since(start)
	rec.Attempts = attempts
	rec.DurationMs = latency.Milliseconds()
	result.Attempts = attempts
	result.LatencyMs = latency.Milliseconds()

	if err != nil {
		apiErr, outcome := translate(err)
		rec.Outcome = outcome
		rec.Error = err.Error()
		w.record(ctx, log, rec)
		log.WithError(err).WithField("attempts", attempts).Info("scan failed")
		if len(result.Warnings) > 0 {
			return nil, &Failure{Err: apiErr, Warnings: result.Warnings}
		}
		return nil, apiErr
	}

	extracted, err := inference.Extract(resp)
	result.Skipped = extracted.Skipped
	for _, s := range extracted.Skipped {
		log.Warnf("skipped malformed tool call at part %d: %s", s.Position, s.Reason)
	}

	var empty *inference.EmptyResultError
	switch {
	case errors.As(err, &empty):
		result.Outcome = models.OutcomeEmpty
		result.Message = MessageNoComponents
		rec.Outcome = models.OutcomeEmpty
	case err != nil:
		return nil, err
	default:
		result.Added = sess.AppendDetected(extracted.Detected)
		result.Outcome = models.OutcomeSuccess
		result.Message = MessageComplete
		rec.Outcome = models.OutcomeSuccess
		rec.Detections = detections(extracted.Detected)
	}

	w.record(ctx, log, rec)
	result.ScanID = rec.ID
	log.WithFields(logrus.Fields{
		"outcome":  result.Outcome,
		"added":    len(result.Added),
		"skipped":  len(result.Skipped),
		"attempts": attempts,
		"latency":  latency.String(),
	}).Info("scan finished")
	return result, nil
}

func (w *Workflow) validateImage(data []byte) (inference.Image, error) {
	if len(data) == 0 {
		return inference.Image{}, apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidImage, "image is empty", nil)
	}
	if w.maxImageBytes > 0 && int64(len(data)) > w.maxImageBytes {
		return inference.Image{}, apierrors.New(http.StatusRequestEntityTooLarge, apierrors.CodeImageTooLarge,
			fmt.Sprintf("image exceeds the limit of %d bytes", w.maxImageBytes), nil)
	}
	mt := mimetype.Detect(data)
	for _, accepted := range acceptedMIMETypes {
		if mt.Is(accepted) {
			return inference.Image{Data: data, MIMEType: accepted}, nil
		}
	}
	return inference.Image{}, apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidImage,
		fmt.Sprintf("only JPEG or PNG images are accepted, got %s", mt.String()), nil)
}

func (w *Workflow) record(ctx context.Context, log logrus.FieldLogger, rec *models.ScanRecord) {
	if w.recorder == nil {
		return
	}
	if err := w.recorder.Record(context.WithoutCancel(ctx), rec); err != nil {
		log.WithError(err).Error("unable to record scan")
	}
}

func translate(err error) (apierrors.APIError, string) {
	var (
		exhausted *inference.ExhaustedError
		rlErr     *inference.RateLimitError
		perr      *inference.ProviderError
		terr      *inference.TransportError
	)
	switch {
	case errors.As(err, &exhausted):
		return apierrors.New(http.StatusTooManyRequests, apierrors.CodeRateLimited,
			fmt.Sprintf("Rate limit. Gave up after %d attempts", exhausted.Attempts), exhausted.Last), models.OutcomeRateLimited
	case errors.As(err, &rlErr):
		return apierrors.New(http.StatusTooManyRequests, apierrors.CodeRateLimited, "Rate limit", err), models.OutcomeRateLimited
	case errors.As(err, &perr):
		return apierrors.New(http.StatusBadGateway, apierrors.CodeProviderError, "Error", err), models.OutcomeProviderError
	case errors.Is(err, context.Canceled):
		return apierrors.New(http.StatusServiceUnavailable, apierrors.CodeTransportError, "scan canceled", err), models.OutcomeCanceled
	case errors.As(err, &terr):
		return apierrors.New(http.StatusBadGateway, apierrors.CodeTransportError, "Error", err), models.OutcomeTransportError
	default:
		return apierrors.New(http.StatusBadGateway, apierrors.CodeTransportError, "Error", err), models.OutcomeTransportError
	}
}

func detections(detected []models.DetectedComponent) []models.Detection {
	out := make([]models.Detection, 0, len(detected))
	for i, d := range detected {
		out = append(out, models.Detection{
			Position:      i,
			ComponentName: d.ComponentName,
			Category:      d.Category,
			Count:         d.Count,
		})
	}
	return out
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func shortToken(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
