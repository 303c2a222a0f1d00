// Package audit writes security-relevant events to the structured log.
// Events are log lines only; nothing is persisted.
package audit

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/recon2root/eventsite/internal/httputil"
)

type EventType string

const (
	EventLoginSuccess      EventType = "login_success"
	EventLoginFailure      EventType = "login_failure"
	EventLogout            EventType = "logout"
	EventAuthFailure       EventType = "auth_failure"
	EventRateLimitExceed   EventType = "rate_limit_exceeded"
	EventCertificateUpload EventType = "certificate_upload"
	EventCertificateImport EventType = "certificate_import"
	EventWinnersUpdate     EventType = "winners_update"
	EventContentUpdate     EventType = "content_update"
	EventCredentialSet     EventType = "credential_set"
	EventPhotoUpload       EventType = "photo_upload"
	EventPhotoDelete       EventType = "photo_delete"
	EventVideoAdd          EventType = "video_add"
	EventVideoDelete       EventType = "video_delete"
	EventOrganizerChange   EventType = "organizer_change"
)

type Event struct {
	Type      EventType
	Username  string
	IP        string
	UserAgent string
	RequestID string
	Details   map[string]interface{}
}

func Log(ctx context.Context, event Event) {
	logger := log.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &log.Logger
	}

	e := logger.Info().
		Str("audit", "security").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now())

	if event.Username != "" {
		e = e.Str("username", event.Username)
	}
	if event.IP != "" {
		e = e.Str("ip", event.IP)
	}
	if event.UserAgent != "" {
		e = e.Str("user_agent", event.UserAgent)
	}
	if event.RequestID != "" {
		e = e.Str("request_id", event.RequestID)
	}

	for k, v := range event.Details {
		e = addField(e, k, v)
	}
	e.Msg("security audit event")
}

func addField(e *zerolog.Event, key string, value interface{}) *zerolog.Event {
	switch v := value.(type) {
	case string:
		return e.Str(key, v)
	case int:
		return e.Int(key, v)
	case int64:
		return e.Int64(key, v)
	case bool:
		return e.Bool(key, v)
	default:
		return e.Interface(key, v)
	}
}

func LogFromRequest(r *http.Request, event Event) {
	event.IP = httputil.ClientIP(r)
	event.UserAgent = r.UserAgent()
	event.RequestID = chimiddleware.GetReqID(r.Context())
	Log(r.Context(), event)
}
