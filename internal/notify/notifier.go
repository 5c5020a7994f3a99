// Package notify delivers rule-engine notifications to one or more outbound
// channels (Telegram, Discord). Delivery is best effort: a failed send is
// logged and reported, never retried, and never blocks the poll loop.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atho-gitrepo/36-80-live-bet/internal/domain"
)

// Sender is the interface that each notification channel must implement.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier dispatches notifications to all registered senders, filtered by
// event type so operators receive only the alerts they care about.
type Notifier struct {
	senders []Sender
	events  map[string]bool // allowed event types; empty means all
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders. Only
// notifications whose event appears in events are forwarded; an empty list
// allows everything.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Dispatch sends one notification to every sender, subject to the event
// filter. Individual sender failures are collected into a combined error; a
// single failing channel does not prevent delivery to the others.
func (n *Notifier) Dispatch(ctx context.Context, note domain.Notification) error {
	if len(n.events) > 0 && !n.events[note.Event] {
		n.logger.DebugContext(ctx, "event filtered out",
			slog.String("event", note.Event),
		)
		return nil
	}
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, note.Title, note.Message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("event", note.Event),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("title", note.Title),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
