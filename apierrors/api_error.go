package apierrors

import (
	"errors"
	"net/http"
	"strings"
)

const (
	CodeInvalidCredentialFormat = "invalid_credential_format"
	CodeUnauthenticated         = "unauthenticated"
	CodeInvalidImage            = "invalid_image"
	CodeImageTooLarge           = "image_too_large"
	CodeScanInProgress          = "scan_in_progress"
	CodeRateLimited             = "rate_limited"
	CodeProviderError           = "provider_error"
	CodeTransportError          = "transport_error"
	CodeInvalidInput            = "invalid_input"
	CodeNotFound                = "not_found"
)

// APIError wraps error which is interpreted as in http error
type APIError struct {
	Message    string
	Err        error
	HTTPStatus int
	ErrCode    string
}

func New(statusCode int, errCode string, message string, err error) APIError {
	return APIError{
		HTTPStatus: statusCode,
		ErrCode:    errCode,
		Message:    message,
		Err:        err,
	}
}

func BadRequest(message string, err error) APIError {
	return New(http.StatusBadRequest, CodeInvalidInput, message, err)
}

func NotFound(message string) APIError {
	return New(http.StatusNotFound, CodeNotFound, message, nil)
}

// Error interface implementation
func (ae APIError) Error() string {
	if ae.Err != nil {
		if ae.Message != "" {
			return ae.Message + ": " + ae.Err.Error()
		}
		return ae.Err.Error()
	}

	return ae.Message
}

func (ae APIError) Unwrap() error {
	return ae.Err
}

// Detail is the underlying cause, if any, suitable for showing to the user.
func (ae APIError) Detail() string {
	if ae.Err == nil {
		return ""
	}
	return ae.Err.Error()
}

type APIErrors []APIError

func (aes APIErrors) Error() string {
	errsFlat := make([]string, 0, len(aes))
	for i := range aes {
		errsFlat = append(errsFlat, aes[i].Error())
	}

	return strings.Join(errsFlat, ", ")
}

// StatusOf returns the http status carried by err, 500 if it carries none.
func StatusOf(err error) int {
	var apiErr APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatus != 0 {
		return apiErr.HTTPStatus
	}
	var apiErrs APIErrors
	if errors.As(err, &apiErrs) && len(apiErrs) > 0 {
		return apiErrs[0].HTTPStatus
	}
	return http.StatusInternalServerError
}
