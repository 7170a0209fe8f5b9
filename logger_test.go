package palette

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJSONLogger_LogFit(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, slog.LevelDebug)

	l.LogFit(context.Background(), 4, 100, 7, true, time.Millisecond, nil)
	assert.Contains(t, buf.String(), `"msg":"fit completed"`)
	assert.Contains(t, buf.String(), `"iterations":7`)

	buf.Reset()
	l.LogFit(context.Background(), 4, 2, 0, false, 0, errors.New("boom"))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), "boom")
}

func TestTextLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, slog.LevelInfo).WithK(8).WithName("cat.png")

	l.LogJob(context.Background(), "cat.png", "out/cat.png", 8, time.Second, nil)
	out := buf.String()
	assert.Contains(t, out, "k=8")
	assert.Contains(t, out, "name=cat.png")
	assert.Contains(t, out, "job completed")
}

func TestTextLogger_LogBatch(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, slog.LevelInfo)

	l.LogBatch(context.Background(), 3, 1, time.Second)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "success=2")
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
