package analytics

import (
	"context"
	"sync"

	"clinic-tariff/core/quote"
)

// Step is a stage of the calculator funnel
type Step string

const (
	StepView      Step = "view"
	StepEdit      Step = "edit"
	StepBreakdown Step = "breakdown"
	StepPDF       Step = "cta_pdf"
	StepEmail     Step = "cta_email"
	StepSubmit    Step = "submit"
)

// Steps lists the funnel stages in order
var Steps = []Step{StepView, StepEdit, StepBreakdown, StepPDF, StepEmail, StepSubmit}

// predecessor is the step a transition must start from; submit has none
var predecessor = map[Step]Step{
	StepEdit:      StepView,
	StepBreakdown: StepEdit,
	StepPDF:       StepBreakdown,
	StepEmail:     StepBreakdown,
}

// Funnel tracks a visitor's progress through the calculator.
// Every action is counted; the current step only moves forward from its
// expected predecessor, except submit which is reachable from anywhere.
type Funnel struct {
	tracker *Tracker

	mu      sync.Mutex
	current Step
	counts  map[Step]int
}

// NewFunnel creates a funnel positioned at the view step
func NewFunnel(tracker *Tracker) *Funnel {
	counts := make(map[Step]int, len(Steps))
	for _, s := range Steps {
		counts[s] = 0
	}
	return &Funnel{tracker: tracker, current: StepView, counts: counts}
}

// Current returns the step reached so far
func (f *Funnel) Current() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Counts returns a copy of the per-step counters
func (f *Funnel) Counts() map[Step]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countsLocked()
}

func (f *Funnel) countsLocked() map[Step]int {
	out := make(map[Step]int, len(f.counts))
	for k, v := range f.counts {
		out[k] = v
	}
	return out
}

// View records the calculator being opened
func (f *Funnel) View(ctx context.Context) error {
	f.mu.Lock()
	f.counts[StepView]++
	f.mu.Unlock()

	if err := f.tracker.Track(ctx, CalcViewed{}); err != nil {
		return err
	}
	return f.tracker.Track(ctx, FunnelStepReached{Step: StepView})
}

// Edit records a parameter change
func (f *Funnel) Edit(ctx context.Context) error {
	return f.advance(ctx, StepEdit)
}

// Breakdown records the breakdown being opened
func (f *Funnel) Breakdown(ctx context.Context) error {
	if err := f.advance(ctx, StepBreakdown); err != nil {
		return err
	}
	return f.tracker.Track(ctx, BreakdownViewed{})
}

// PDF records the quote being exported
func (f *Funnel) PDF(ctx context.Context, q quote.Quote) error {
	if err := f.advance(ctx, StepPDF); err != nil {
		return err
	}
	return f.tracker.Track(ctx, PDFSavedFrom(q))
}

// Email records the quote being requested by e-mail
func (f *Funnel) Email(ctx context.Context, email string, q quote.Quote) error {
	if err := f.advance(ctx, StepEmail); err != nil {
		return err
	}
	return f.tracker.Track(ctx, QuoteEmailRequestedFrom(email, q))
}

// Submit records an application and reports the A/B result
func (f *Funnel) Submit(ctx context.Context) error {
	f.mu.Lock()
	f.current = StepSubmit
	f.counts[StepSubmit]++
	steps := f.countsLocked()
	f.mu.Unlock()

	if err := f.tracker.Track(ctx, FunnelStepReached{Step: StepSubmit}); err != nil {
		return err
	}
	return f.tracker.Track(ctx, ABResult{
		Test:    TestPeriodTooltip,
		Variant: f.tracker.Session().Variant(TestPeriodTooltip),
		Success: true,
		Steps:   steps,
	})
}

func (f *Funnel) advance(ctx context.Context, to Step) error {
	f.mu.Lock()
	f.counts[to]++
	moved := f.current == predecessor[to]
	if moved {
		f.current = to
	}
	f.mu.Unlock()

	if !moved {
		return nil
	}
	return f.tracker.Track(ctx, FunnelStepReached{Step: to})
}
