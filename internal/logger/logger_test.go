package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter(&buf, 4)

	lg.Info("Store: read", "user_id", "u1")
	assert.Empty(t, buf.String())

	lg.Warn("Store: remote write failed", "user_id", "u1")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), `msg="Store: remote write failed"`)
	assert.Contains(t, buf.String(), "user_id=u1")
}
