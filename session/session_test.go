package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lablens/models"
)

var fixedNow = func() time.Time {
	return time.Date(2026, 10, 19, 14, 3, 7, 0, time.UTC)
}

func TestLogin(t *testing.T) {
	testCases := []struct {
		name       string
		credential string
		wantErr    error
	}{
		{name: "valid key", credential: "AIza-test-123"},
		{name: "bare prefix", credential: "AIza"},
		{name: "bad key", credential: "bad-key", wantErr: ErrCredentialFormat},
		{name: "empty", credential: "", wantErr: ErrCredentialFormat},
		{name: "lower case prefix", credential: "aiza-test", wantErr: ErrCredentialFormat},
		{name: "leading space", credential: " AIza-test", wantErr: ErrCredentialFormat},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantErr, ValidateCredential(tc.credential))
			s := newSession("token", fixedNow)

			err := s.Login(tc.credential)

			if tc.wantErr != nil {
				assert.Equal(t, tc.wantErr, err)
				assert.False(t, s.Authenticated())
				_, credErr := s.Credential()
				assert.Equal(t, ErrUnauthenticated, credErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, s.Authenticated())
			cred, err := s.Credential()
			require.NoError(t, err)
			assert.Equal(t, tc.credential, cred)
		})
	}
}

func TestLogout(t *testing.T) {
	s := newSession("token", fixedNow)
	require.NoError(t, s.Login("AIza-test-123"))
	s.AppendDetected([]models.DetectedComponent{{ComponentName: "LED", Count: 2, Category: "Optical"}})

	s.Logout()

	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Rows())
	_, err := s.Credential()
	assert.Equal(t, ErrUnauthenticated, err)
}

func TestBeginScan(t *testing.T) {
	s := newSession("token", fixedNow)
	assert.Equal(t, ErrUnauthenticated, s.BeginScan())

	require.NoError(t, s.Login("AIza-test-123"))
	require.NoError(t, s.BeginScan())
	assert.Equal(t, ErrScanInProgress, s.BeginScan())

	s.EndScan(1500 * time.Millisecond)
	require.NoError(t, s.BeginScan())
	s.EndScan(0)

	require.NotNil(t, s.Metrics().LastLatencyMs)
	assert.Equal(t, int64(1500), *s.Metrics().LastLatencyMs)
}
