package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lablens/config"
)

func TestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(config.LoggingConfig{Level: logrus.DebugLevel, Format: "text"}, buf)

	Fork(l, "scan").Debugf("Debug %s", "Debug")
	Fork(l, "scan").Infof("Info %s", "Info")
	l.Errorf("Error %s", "Error")

	assert.Contains(t, buf.String(), "Debug Debug")
	assert.Contains(t, buf.String(), "component=scan")
	assert.Contains(t, buf.String(), "Info Info")
	assert.Contains(t, buf.String(), "Error Error")
}

func TestLoggerLevelAndFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(config.LoggingConfig{Level: logrus.InfoLevel, Format: "json"}, buf)

	l.Debug("hidden")
	l.WithField("component", "auth").Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"component":"auth"`)
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestLogOutputFile(t *testing.T) {
	logfile := t.TempDir() + "/test.log"
	out := NewLogOutput(logfile)
	require.NoError(t, out.Start())

	l := New(config.LoggingConfig{Level: logrus.InfoLevel, Format: "text"}, out.File)
	l.Info("to file")
	out.Shutdown()

	content, err := os.ReadFile(logfile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "to file")
}

func TestLogOutputStdout(t *testing.T) {
	out := NewLogOutput("")
	require.NoError(t, out.Start())
	assert.Equal(t, os.Stdout, out.File)
	out.Shutdown()
}

func TestGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)

	router := gin.New()
	router.Use(GinLogger(l))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
	assert.Equal(t, "/ok", hook.LastEntry().Data["path"])

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	require.Len(t, hook.Entries, 2)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, http.StatusBadGateway, hook.LastEntry().Data["status"])
}
