package observability

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// AuditInput names the who/what/outcome of a mutating request. Extra
// key/value pairs ride along unchanged.
type AuditInput struct {
	EventName  string
	TargetType string
	TargetID   string
	Action     string
	Outcome    string
	Reason     string
}

func EmitAudit(r *http.Request, in AuditInput, kv ...any) {
	attrs := []any{
		"event", in.EventName,
		"target_type", in.TargetType,
		"target_id", in.TargetID,
		"action", in.Action,
		"outcome", in.Outcome,
		"reason", in.Reason,
		"request_id", chimiddleware.GetReqID(r.Context()),
	}
	attrs = append(attrs, kv...)
	slog.Default().InfoContext(r.Context(), "audit", attrs...)
}
