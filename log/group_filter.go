package log

import (
	"context"
	"log/slog"
	"strings"
)

// GroupFilterHandler drops records emitted outside the allowed slog groups.
// Useful for narrowing noisy debug output to a single subsystem.
type GroupFilterHandler struct {
	next    slog.Handler
	allowed map[string]struct{}
	groups  []string
}

// NewGroupFilterHandler wraps next with group filtering. When allowedGroups is
// empty the original handler is returned unchanged.
func NewGroupFilterHandler(next slog.Handler, allowedGroups []string) slog.Handler {
	if next == nil || len(allowedGroups) == 0 {
		return next
	}
	allowed := make(map[string]struct{}, len(allowedGroups))
	for _, group := range allowedGroups {
		if trimmed := strings.TrimSpace(strings.ToLower(group)); trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return next
	}
	return &GroupFilterHandler{next: next, allowed: allowed}
}

func (h *GroupFilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *GroupFilterHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, grp := range h.groups {
		if _, ok := h.allowed[grp]; ok {
			return h.next.Handle(ctx, record)
		}
	}
	return nil
}

func (h *GroupFilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &GroupFilterHandler{
		next:    h.next.WithAttrs(attrs),
		allowed: h.allowed,
		groups:  append([]string{}, h.groups...),
	}
}

func (h *GroupFilterHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := &GroupFilterHandler{
		next:    h.next.WithGroup(name),
		allowed: h.allowed,
		groups:  append(append([]string{}, h.groups...), strings.ToLower(name)),
	}
	return clone
}
