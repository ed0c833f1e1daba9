// Package notify holds the UI-facing side-effect surfaces of the event
// pipeline: toast notifications and the process-wide connectivity status.
package notify

import (
	"log/slog"

	"github.com/google/uuid"
)

// Notification is one toast shown to the user.
type Notification struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// New creates a Notification with a fresh id.
func New(title, body string) Notification {
	return Notification{
		ID:    uuid.NewString(),
		Title: title,
		Body:  body,
	}
}

// Sink displays notifications. Implementations must not block and must not
// return errors into the event pipeline.
type Sink interface {
	Show(n Notification)
	ClearAll()
}

// LogSink is a Sink that writes notifications to the logger. It stands in
// for a real UI surface in headless deployments and tests.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink. A nil logger falls back to slog.Default.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Show(n Notification) {
	s.logger.Info("notification", "id", n.ID, "title", n.Title, "body", n.Body)
}

func (s *LogSink) ClearAll() {
	s.logger.Debug("notifications cleared")
}
