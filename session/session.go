package session

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"lablens/apierrors"
	"lablens/models"
)

// CredentialPrefix is the literal every Gemini API key starts with.
const CredentialPrefix = "AIza"

var (
	ErrCredentialFormat = apierrors.New(http.StatusBadRequest, apierrors.CodeInvalidCredentialFormat,
		"Invalid API Key format. It usually starts with 'AIza'.", nil)
	ErrUnauthenticated = apierrors.New(http.StatusUnauthorized, apierrors.CodeUnauthenticated,
		"Please enter your Gemini API Key to initialize the inventory system.", nil)
	ErrScanInProgress = apierrors.New(http.StatusConflict, apierrors.CodeScanInProgress,
		"A scan is already running for this session.", nil)
	ErrRowNotFound = apierrors.NotFound("inventory row not found")
)

// Session is the state of one browser session. All methods are safe for
// concurrent use.
type Session struct {
	Token     string
	CreatedAt time.Time

	mu            sync.Mutex
	authenticated bool
	credential    string
	inventory     []models.InventoryRow
	lastLatency   time.Duration
	scanning      bool
	now           func() time.Time
}

func newSession(token string, now func() time.Time) *Session {
	return &Session{
		Token:     token,
		CreatedAt: now(),
		inventory: []models.InventoryRow{},
		now:       now,
	}
}

// ValidateCredential checks the format of a credential.
func ValidateCredential(credential string) error {
	if !strings.HasPrefix(credential, CredentialPrefix) {
		return ErrCredentialFormat
	}
	return nil
}

// Login accepts the credential if it has the expected format. Nothing changes on failure.
func (s *Session) Login(credential string) error {
	if err := ValidateCredential(credential); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
	s.credential = credential
	return nil
}

// Logout drops authentication, credential and inventory.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.credential = ""
	s.inventory = []models.InventoryRow{}
	s.lastLatency = 0
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Credential returns the API key of an authenticated session.
func (s *Session) Credential() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return "", ErrUnauthenticated
	}
	return s.credential, nil
}

// BeginScan marks the session as scanning. Only one scan may run at a time.
func (s *Session) BeginScan() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return ErrUnauthenticated
	}
	if s.scanning {
		return ErrScanInProgress
	}
	s.scanning = true
	return nil
}

// EndScan clears the scanning mark. A positive latency is kept for the metrics panel.
func (s *Session) EndScan(latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanning = false
	if latency > 0 {
		s.lastLatency = latency
	}
}
