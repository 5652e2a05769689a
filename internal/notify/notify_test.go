package notify

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Success("Note deleted successfully")
	c.Error("Failed to delete note")

	assert.Equal(t, "✓ Note deleted successfully\n✗ Failed to delete note\n", buf.String())
}

func TestMulti(t *testing.T) {
	var a, b, logs bytes.Buffer
	m := Multi{NewConsole(&a), NewConsole(&b), NewLog(slog.New(slog.NewTextHandler(&logs, nil)))}

	m.Error("Login failed")

	assert.Equal(t, "✗ Login failed\n", a.String())
	assert.Equal(t, a.String(), b.String())
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), `msg="Login failed"`)
	assert.Contains(t, logs.String(), "component=notify")
}
