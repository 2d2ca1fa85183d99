// Package audit is the immutable event trail for authentication and
// authorization decisions: logins, TOTP lifecycle, backup-code
// consumption, and permission-set changes.
package audit

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// EventType names one category of audited event.
type EventType string

const (
	EventLoginSuccess        EventType = "LOGIN_SUCCESS"
	EventLoginFailed         EventType = "LOGIN_FAILED"
	EventSessionVerified     EventType = "SESSION_VERIFIED"
	EventSessionVerifyFailed EventType = "SESSION_VERIFY_FAILED"
	EventLogout              EventType = "LOGOUT"
	EventTotpEnrolled        EventType = "TOTP_ENROLLED"
	EventTotpActivated       EventType = "TOTP_ACTIVATED"
	EventTotpRemoved         EventType = "TOTP_REMOVED"
	EventBackupCodeConsumed  EventType = "BACKUP_CODE_CONSUMED"
	EventPasswordChanged     EventType = "PASSWORD_CHANGED"
	EventPermissionsReplaced EventType = "PERMISSIONS_REPLACED"
)

// Logger is the contract every handler depends on for audit writes.
type Logger interface {
	Log(ctx context.Context, actorID int32, action EventType, resource string, metadata map[string]string)
}

// JSONLogger writes structured audit entries to stdout under a
// dedicated "log_type" marker so log aggregators can route them to a
// separate index from ordinary application logs.
type JSONLogger struct {
	logger *slog.Logger
}

// NewJSONLogger builds a JSONLogger with its own handler, independent
// of the main application logger's level and format.
func NewJSONLogger() *JSONLogger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return &JSONLogger{logger: slog.New(handler)}
}

func (l *JSONLogger) Log(ctx context.Context, actorID int32, action EventType, resource string, metadata map[string]string) {
	entryID := uuid.New()

	fields := []any{
		slog.String("log_type", "AUDIT_TRAIL"),
		slog.String("entry_id", entryID.String()),
		slog.Int64("actor_id", int64(actorID)),
		slog.String("action", string(action)),
		slog.String("resource", resource),
		slog.Time("timestamp_utc", time.Now().UTC()),
	}

	for k, v := range metadata {
		fields = append(fields, slog.String("meta_"+k, v))
	}

	l.logger.InfoContext(ctx, "audit_event", fields...)
}

// NoopLogger discards every event. api.Handler falls back to it when no
// Logger is configured.
type NoopLogger struct{}

func (NoopLogger) Log(context.Context, int32, EventType, string, map[string]string) {}
