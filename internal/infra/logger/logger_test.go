package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "prod", "catalog")
	log.Debug("hidden")
	assert.Zero(t, buf.Len())

	log.Info("plans listed", "count", 3)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "plans listed", rec["msg"])
	assert.Equal(t, "catalog", rec["service"])
	assert.EqualValues(t, 3, rec["count"])

	buf.Reset()
	NewWithWriter(&buf, "dev", "catalog").Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
