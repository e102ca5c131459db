package inference

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"lablens/config"
)

const statusResourceExhausted = "RESOURCE_EXHAUSTED"

// Generator sends one image to the model and returns its answer.
type Generator interface {
	Generate(ctx context.Context, credential string, img Image) (*Response, error)
}

// GeminiClient calls the Gemini generateContent API. It keeps no credential:
// every call builds a client for the key it is given.
type GeminiClient struct {
	model      string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	log        logrus.FieldLogger
}

func NewGeminiClient(cfg config.GeminiConfig, httpClient *http.Client, log logrus.FieldLogger) *GeminiClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &GeminiClient{
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		log:        log,
	}
}

func (c *GeminiClient) Model() string {
	return c.model
}

func (c *GeminiClient) Generate(ctx context.Context, credential string, img Image) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      credential,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  c.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
	})
	if err != nil {
		return nil, &ProviderError{Message: err.Error(), Err: err}
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(Instruction),
			genai.NewPartFromBytes(img.Data, img.MIMEType),
		}, genai.RoleUser),
	}
	genCfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{toolDeclaration}}},
	}

	c.log.WithFields(logrus.Fields{"model": c.model, "mime": img.MIMEType, "bytes": len(img.Data)}).Debug("sending image to model")
	resp, err := client.Models.GenerateContent(ctx, c.model, contents, genCfg)
	if err != nil {
		return nil, classify(err)
	}
	return fromGenAI(resp), nil
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fromAPIError(apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fromAPIError(*apiErrPtr, err)
	}
	return &TransportError{Err: err}
}

func fromAPIError(apiErr genai.APIError, err error) error {
	if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == statusResourceExhausted {
		return &RateLimitError{Err: err}
	}
	return &ProviderError{
		Code:    apiErr.Code,
		Status:  apiErr.Status,
		Message: apiErr.Message,
		Err:     err,
	}
}
