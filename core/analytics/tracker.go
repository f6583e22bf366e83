package analytics

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinic-tariff/internal/errors"
	"clinic-tariff/internal/logging"
)

// UTM holds the campaign tags a visitor arrived with
type UTM struct {
	Source   string `json:"utm_source,omitempty"`
	Medium   string `json:"utm_medium,omitempty"`
	Campaign string `json:"utm_campaign,omitempty"`
}

// IsZero reports whether no tag is set
func (u UTM) IsZero() bool {
	return u == UTM{}
}

// ParseUTM reads utm_source, utm_medium and utm_campaign from a query string.
// A leading "?" is allowed.
func ParseUTM(rawQuery string) (UTM, error) {
	if len(rawQuery) > 0 && rawQuery[0] == '?' {
		rawQuery = rawQuery[1:]
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return UTM{}, errors.Wrap(errors.TypeInput, "invalid UTM query", err)
	}
	return UTM{
		Source:   values.Get("utm_source"),
		Medium:   values.Get("utm_medium"),
		Campaign: values.Get("utm_campaign"),
	}, nil
}

// Session is the per-visitor context attached to every event
type Session struct {
	ID       uuid.UUID
	UTM      UTM
	Variants map[string]Variant
}

// NewSession creates a session with a fresh ID
func NewSession(utm UTM, variants map[string]Variant) Session {
	copied := make(map[string]Variant, len(variants))
	for k, v := range variants {
		copied[k] = v
	}
	return Session{ID: uuid.New(), UTM: utm, Variants: copied}
}

// Variant returns the session's variant for a test, A when unassigned
func (s Session) Variant(test string) Variant {
	if v, ok := s.Variants[test]; ok {
		return v
	}
	return VariantA
}

// Envelope is what a Sink receives
type Envelope struct {
	Name      string    `json:"event"`
	Event     Event     `json:"payload"`
	Session   string    `json:"session"`
	AB        Variant   `json:"ab"`
	UTM       UTM       `json:"utm"`
	Timestamp time.Time `json:"ts"`
}

// Sink delivers envelopes to an analytics backend
type Sink interface {
	Emit(ctx context.Context, env Envelope) error
}

// LogSink writes envelopes as structured log entries
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink on top of logger
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Emit implements Sink
func (s *LogSink) Emit(_ context.Context, env Envelope) error {
	s.logger.Info("analytics event",
		zap.String("event", env.Name),
		zap.Any("payload", env.Event),
		zap.String("session", env.Session),
		zap.String("ab", string(env.AB)),
		zap.Any("utm", env.UTM),
		zap.Time("ts", env.Timestamp),
	)
	return nil
}

// MemorySink records envelopes in memory
type MemorySink struct {
	mu        sync.Mutex
	envelopes []Envelope
}

// Emit implements Sink
func (s *MemorySink) Emit(_ context.Context, env Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelopes = append(s.envelopes, env)
	return nil
}

// Envelopes returns a copy of everything recorded so far
func (s *MemorySink) Envelopes() []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Envelope, len(s.envelopes))
	copy(out, s.envelopes)
	return out
}

// Names returns the recorded event names in order
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.envelopes))
	for i, env := range s.envelopes {
		names[i] = env.Name
	}
	return names
}

// Tracker stamps events with session context
type Tracker struct {
	sink    Sink
	session Session
	now     func() time.Time
}

// TrackerOption configures a Tracker
type TrackerOption func(*Tracker)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker for one session
func NewTracker(sink Sink, session Session, opts ...TrackerOption) *Tracker {
	t := &Tracker{sink: sink, session: session, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Session returns the tracker's session
func (t *Tracker) Session() Session {
	return t.session
}

// Track wraps ev in an envelope and emits it
func (t *Tracker) Track(ctx context.Context, ev Event) error {
	env := Envelope{
		Name:      ev.Name(),
		Event:     ev,
		Session:   t.session.ID.String(),
		AB:        t.session.Variant(TestPeriodTooltip),
		UTM:       t.session.UTM,
		Timestamp: t.now(),
	}
	if err := t.sink.Emit(ctx, env); err != nil {
		return errors.Wrapf(errors.TypeInternal, err, "emit %s", env.Name)
	}
	return nil
}

// TrackDebounced schedules ev on d; only the last event of a burst is emitted.
// Emit failures are logged since nobody is waiting on them.
func (t *Tracker) TrackDebounced(ctx context.Context, d *Debouncer, ev Event) {
	d.Trigger(func() {
		if err := t.Track(ctx, ev); err != nil {
			logging.Warn("debounced analytics event dropped", zap.String("event", ev.Name()), zap.Error(err))
		}
	})
}
