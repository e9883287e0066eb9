// Ideaforge - Heuristic Idea Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ideaforge

package audit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/ideaforge/internal/config"
	"github.com/tomtom215/ideaforge/internal/events"
	"github.com/tomtom215/ideaforge/internal/logging"
)

// Config holds configuration for the audit logger.
type Config struct {
	Enabled         bool          `json:"enabled"`
	LogLevel        Severity      `json:"log_level"`
	RetentionDays   int           `json:"retention_days"`
	CleanupInterval time.Duration `json:"cleanup_interval"`
	BufferSize      int           `json:"buffer_size"`
	LogToStdout     bool          `json:"log_to_stdout"`
	IncludeDebug    bool          `json:"include_debug"`
}

// DefaultConfig returns the defaults used when no config is given.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		LogLevel:        SeverityInfo,
		RetentionDays:   90,
		CleanupInterval: 24 * time.Hour,
		BufferSize:      1000,
	}
}

// ConfigFrom converts the application audit section.
func ConfigFrom(c config.AuditConfig) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = c.Enabled
	if c.RetentionDays > 0 {
		cfg.RetentionDays = c.RetentionDays
	}
	if c.BufferSize > 0 {
		cfg.BufferSize = c.BufferSize
	}
	if c.CleanupInterval > 0 {
		cfg.CleanupInterval = c.CleanupInterval
	}
	return cfg
}

// Logger buffers audit events and writes them to the store from a
// background goroutine. It implements events.Sink.
type Logger struct {
	config    *Config
	store     Store
	eventChan chan *Event
	mu        sync.RWMutex
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewLogger creates an audit logger and starts its writer.
func NewLogger(store Store, cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}

	l := &Logger{
		config:    cfg,
		store:     store,
		eventChan: make(chan *Event, cfg.BufferSize),
		stopChan:  make(chan struct{}),
		now:       func() time.Time { return time.Now().UTC() },
	}

	l.wg.Add(1)
	go l.asyncWriter()
	return l
}

func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

func (l *Logger) writeEvent(event *Event) {
	l.mu.RLock()
	toStdout := l.config.LogToStdout
	l.mu.RUnlock()

	if toStdout {
		if data, err := json.Marshal(event); err == nil {
			logging.Info().RawJSON("event", data).Msg("Audit event")
		}
	}

	if l.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to save audit event")
	}
}

// Log queues an event. It never blocks: when the buffer is full the event
// is dropped with a warning.
func (l *Logger) Log(event *Event) {
	l.mu.RLock()
	cfg := *l.config
	l.mu.RUnlock()

	if !cfg.Enabled || !shouldLog(event.Severity, &cfg) {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}

	select {
	case l.eventChan <- event:
	default:
		logging.Warn().Str("event_id", event.ID).Msg("Audit event buffer full, dropping event")
	}
}

func shouldLog(severity Severity, cfg *Config) bool {
	if severity == SeverityDebug && !cfg.IncludeDebug {
		return false
	}
	return severityOrder[severity] >= severityOrder[cfg.LogLevel]
}

// Publish implements events.Sink by recording a domain event.
func (l *Logger) Publish(ctx context.Context, ev events.Event) {
	l.Log(FromDomainEvent(ctx, ev))
}

// Close drains the buffer and stops the writer.
func (l *Logger) Close() error {
	l.stopOnce.Do(func() { close(l.stopChan) })
	l.wg.Wait()
	return nil
}

// Serve runs retention cleanup until ctx is canceled. It implements
// suture.Service.
func (l *Logger) Serve(ctx context.Context) error {
	l.mu.RLock()
	interval := l.config.CleanupInterval
	l.mu.RUnlock()
	if interval <= 0 {
		interval = DefaultConfig().CleanupInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := l.Cleanup(ctx); err != nil {
				logging.Error().Err(err).Msg("Audit cleanup error")
			}
		}
	}
}

// Cleanup deletes events older than the retention period.
func (l *Logger) Cleanup(ctx context.Context) (int64, error) {
	if l.store == nil {
		return 0, nil
	}
	l.mu.RLock()
	retention := l.config.RetentionDays
	l.mu.RUnlock()

	count, err := l.store.Delete(ctx, l.now().AddDate(0, 0, -retention))
	if err != nil {
		return 0, fmt.Errorf("audit cleanup: %w", err)
	}
	if count > 0 {
		logging.Info().Int64("count", count).Msg("Cleaned up old audit events")
	}
	return count, nil
}

// Query retrieves events matching the filter.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return l.store.Query(ctx, filter)
}

// Count returns the number of events matching the filter.
func (l *Logger) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return l.store.Count(ctx, filter)
}

// SetEnabled enables or disables audit logging.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Enabled = enabled
}

// Enabled returns whether audit logging is enabled.
func (l *Logger) Enabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config.Enabled
}

type eventShape struct {
	severity    Severity
	outcome     Outcome
	action      string
	description string
}

var domainShapes = map[events.Type]eventShape{
	events.IdeaAdded:          {SeverityInfo, OutcomeSuccess, "ingest", "Idea added"},
	events.IdeaDuplicate:      {SeverityInfo, OutcomeFailure, "ingest", "Duplicate idea not inserted"},
	events.IdeaRejected:       {SeverityWarning, OutcomeFailure, "ingest", "Idea rejected"},
	events.RecommendationMade: {SeverityDebug, OutcomeSuccess, "recommend", "Recommendations served"},
	events.FeedbackApplied:    {SeverityInfo, OutcomeSuccess, "feedback", "Feedback applied"},
	events.FederatedRound:     {SeverityInfo, OutcomeSuccess, "aggregate", "Federated round aggregated"},
	events.WeightsUpdated:     {SeverityWarning, OutcomeSuccess, "update_weights", "Ranking weights updated"},
	events.IntegrityAlert:     {SeverityCritical, OutcomeFailure, "verify", "Integrity mismatch detected"},
}

// FromDomainEvent converts a pipeline event into an audit record.
func FromDomainEvent(ctx context.Context, ev events.Event) *Event {
	shape, ok := domainShapes[ev.Type]
	if !ok {
		shape = eventShape{SeverityInfo, OutcomeUnknown, string(ev.Type), string(ev.Type)}
	}

	e := &Event{
		Timestamp:     ev.Timestamp,
		Type:          EventType(ev.Type),
		Severity:      shape.severity,
		Outcome:       shape.outcome,
		Actor:         SystemActor(),
		Action:        shape.action,
		Description:   shape.description,
		RequestID:     ev.RequestID,
		CorrelationID: logging.CorrelationIDFromContext(ctx),
	}
	if e.RequestID == "" {
		e.RequestID = logging.RequestIDFromContext(ctx)
	}
	if ev.Outcome != "" {
		e.Description += ": " + ev.Outcome
	}
	if ev.IdeaID != "" {
		e.Target = &Target{ID: ev.IdeaID, Type: "idea"}
	}
	if len(ev.Data) > 0 {
		e.Metadata = mustJSON(ev.Data)
	}
	return e
}

// LogAdminAction records an operator action such as seeding or optimizing.
func (l *Logger) LogAdminAction(ctx context.Context, source Source, action, description string, metadata map[string]any) {
	l.Log(&Event{
		Type:          EventTypeAdminAction,
		Severity:      SeverityWarning,
		Outcome:       OutcomeSuccess,
		Actor:         OperatorActor(source),
		Source:        source,
		Action:        action,
		Description:   description,
		Metadata:      mustJSON(metadata),
		RequestID:     logging.RequestIDFromContext(ctx),
		CorrelationID: logging.CorrelationIDFromContext(ctx),
	})
}

// mustJSON converts a value to JSON, returning an empty object on error.
func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return json.RawMessage("{}")
	}
	return data
}

// SourceFromRequest creates a Source from an HTTP request. Forwarding
// headers win over the socket address.
func SourceFromRequest(r *http.Request) Source {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip = xff
	} else if xri := r.Header.Get("X-Real-IP"); xri != "" {
		ip = xri
	}

	return Source{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
		Hostname:  r.Host,
	}
}

// SystemActor returns the Actor for events raised by the pipeline itself.
func SystemActor() Actor {
	return Actor{ID: "system", Type: "system", Name: "Ideaforge"}
}

// OperatorActor identifies an API or CLI caller by address.
func OperatorActor(source Source) Actor {
	if source.IPAddress == "" {
		return Actor{ID: "cli", Type: "user", Name: "ideactl"}
	}
	return Actor{ID: source.IPAddress, Type: "user", Name: source.UserAgent}
}
