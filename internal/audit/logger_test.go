package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFromRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.RemoteAddr = "203.0.113.9:4242"
	req.Header.Set("User-Agent", "curl/8.0")
	req = req.WithContext(logger.WithContext(context.Background()))

	LogFromRequest(req, Event{
		Type:     EventLoginFailure,
		Username: "admin",
		Details:  map[string]interface{}{"attempts": 2},
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "security", entry["audit"])
	assert.Equal(t, "login_failure", entry["event_type"])
	assert.Equal(t, "admin", entry["username"])
	assert.Equal(t, "203.0.113.9", entry["ip"])
	assert.Equal(t, "curl/8.0", entry["user_agent"])
	assert.Equal(t, float64(2), entry["attempts"])
}
