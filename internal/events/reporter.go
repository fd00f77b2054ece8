// Package events emits one event per published file to NATS. The reporter
// is optional; a nil *Reporter is a no-op.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docpublish/internal/config"
	"git.home.luguber.info/inful/docpublish/internal/publish"
)

// PublishedEvent is the wire payload for one published file.
type PublishedEvent struct {
	BuildID    string    `json:"build_id"`
	URL        string    `json:"url"`
	Path       string    `json:"path"`
	SourcePath string    `json:"source_path"`
	Locale     string    `json:"locale"`
	ErrorCount int       `json:"error_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// Reporter publishes build events to a NATS subject.
type Reporter struct {
	conn    *nats.Conn
	subject string
	buildID string
}

// NewReporter connects to NATS. Returns nil (and no error) when events are
// disabled in the configuration.
func NewReporter(cfg config.EventsConfig, buildID string) (*Reporter, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	conn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	slog.Info("publish event reporter connected", "url", cfg.NATSURL, "subject", cfg.Subject)
	return &Reporter{conn: conn, subject: cfg.Subject, buildID: buildID}, nil
}

// Published emits an event for one published file. Failures are logged,
// never propagated into the file's error list.
func (r *Reporter) Published(item publish.PublishItem, errorCount int) {
	if r == nil || r.conn == nil {
		return
	}

	event := PublishedEvent{
		BuildID:    r.buildID,
		URL:        item.URL,
		Path:       item.Path,
		SourcePath: item.SourcePath,
		Locale:     item.Locale,
		ErrorCount: errorCount,
		Timestamp:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("marshal publish event failed", "error", err)
		return
	}
	if err := r.conn.Publish(r.subject, payload); err != nil {
		slog.Warn("publish event emission failed", "error", err)
	}
}

// Close drains and closes the connection.
func (r *Reporter) Close() {
	if r == nil || r.conn == nil {
		return
	}
	_ = r.conn.Drain()
}
