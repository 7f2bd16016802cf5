package sl_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/audio-library/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	attr := sl.Err(nil)
	assert.Equal(t, "<nil>", attr.Value.String())
}

func TestID(t *testing.T) {
	attr := sl.ID("track_id", 42)
	assert.Equal(t, "track_id", attr.Key)
	assert.Equal(t, int64(42), attr.Value.Int64())
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	sl.New("local", &buf).Debug("debug line")
	assert.Contains(t, buf.String(), "msg=\"debug line\"")

	buf.Reset()
	logger := sl.New("prod", &buf)
	logger.Debug("hidden")
	logger.Info("visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"visible"`)
}
