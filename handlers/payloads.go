package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lablens/apierrors"
	"lablens/scan"
)

// SuccessPayload represents a uniform format for all successful API responses.
type SuccessPayload struct {
	Data interface{} `json:"data"`
	Meta interface{} `json:"meta,omitempty"`
}

func NewSuccessPayload(data interface{}) SuccessPayload {
	return SuccessPayload{
		Data: data,
	}
}

// ErrorPayload represents a uniform format for all error API responses.
type ErrorPayload struct {
	Errors []ErrorPayloadItem `json:"errors"`
	Meta   interface{}        `json:"meta,omitempty"`
}

// ErrorPayloadItem represents a uniform format for a single error used in API responses.
type ErrorPayloadItem struct {
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func NewErrorPayloadWithCode(code, title, detail string) ErrorPayload {
	return ErrorPayload{
		Errors: []ErrorPayloadItem{
			{
				Code:   code,
				Title:  title,
				Detail: detail,
			},
		},
	}
}

func writeJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, NewSuccessPayload(data))
}

// writeError aborts the request with the status and code carried by err.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code, title, detail := "", err.Error(), ""

	var apiErr apierrors.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		code = apiErr.ErrCode
		title = apiErr.Message
		detail = apiErr.Detail()
		if title == "" {
			title, detail = detail, ""
		}
	}

	payload := NewErrorPayloadWithCode(code, title, detail)
	var failure *scan.Failure
	if errors.As(err, &failure) {
		payload.Meta = gin.H{"warnings": failure.Warnings}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, payload)
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		writeError(c, apierrors.BadRequest("Invalid JSON data.", err))
		return false
	}
	return true
}
