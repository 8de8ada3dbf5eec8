package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewLogger_QuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.Debug("resolved project")
	logger.Info("processing packages")
	logger.Warn("license lookup failed", zap.String("package", "widget"))
	_ = logger.Sync()

	out := buf.String()
	assert.NotContains(t, out, "resolved project")
	assert.NotContains(t, out, "processing packages")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "license lookup failed")
	assert.Contains(t, out, `"package": "widget"`)
}

func TestNewLogger_Verbose(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, true)

	logger.Debug("resolved project", zap.String("strategy", "direct"))
	_ = logger.Sync()

	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "resolved project")
}
