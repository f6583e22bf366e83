package analytics

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"clinic-tariff/core/pricing"
	"clinic-tariff/core/quote"
	"clinic-tariff/core/tariff"
	"clinic-tariff/internal/errors"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestTracker(variants map[string]Variant) (*Tracker, *MemorySink) {
	sink := &MemorySink{}
	session := NewSession(UTM{Source: "yandex", Campaign: "spring"}, variants)
	return NewTracker(sink, session, WithClock(func() time.Time { return fixedNow })), sink
}

func testQuote(t *testing.T) quote.Quote {
	t.Helper()
	calc, err := pricing.NewCalculator(tariff.Current())
	require.NoError(t, err)
	q, err := quote.Build(calc, pricing.Normalize(pricing.RawParameters{PeriodMonths: 12, PatientBase: 25000, Branches: 2, MessagingNumbers: 5, Marketing: "advanced"}))
	require.NoError(t, err)
	return q
}

func TestParseUTM(t *testing.T) {
	utm, err := ParseUTM("?utm_source=google&utm_medium=cpc&utm_campaign=dent&x=1")
	require.NoError(t, err)
	assert.Equal(t, UTM{Source: "google", Medium: "cpc", Campaign: "dent"}, utm)

	utm, err = ParseUTM("")
	require.NoError(t, err)
	assert.True(t, utm.IsZero())

	_, err = ParseUTM("utm_source=%zz")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestTrackerStampsEnvelope(t *testing.T) {
	tracker, sink := newTestTracker(map[string]Variant{TestPeriodTooltip: VariantB})

	require.NoError(t, tracker.Track(context.Background(), TooltipShown{Field: "branches"}))

	envs := sink.Envelopes()
	require.Len(t, envs, 1)
	env := envs[0]
	assert.Equal(t, "tooltip_show", env.Name)
	assert.Equal(t, TooltipShown{Field: "branches"}, env.Event)
	assert.Equal(t, VariantB, env.AB)
	assert.Equal(t, "yandex", env.UTM.Source)
	assert.Equal(t, tracker.Session().ID.String(), env.Session)
	assert.Equal(t, fixedNow, env.Timestamp)
}

func TestTrackerDefaultsToVariantA(t *testing.T) {
	tracker, sink := newTestTracker(nil)
	require.NoError(t, tracker.Track(context.Background(), CalcViewed{}))
	assert.Equal(t, VariantA, sink.Envelopes()[0].AB)
}

type failingSink struct{}

func (failingSink) Emit(context.Context, Envelope) error { return stderrors.New("backend down") }

func TestTrackerWrapsSinkErrors(t *testing.T) {
	tracker := NewTracker(failingSink{}, NewSession(UTM{}, nil))
	err := tracker.Track(context.Background(), CalcViewed{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInternal))
	assert.Contains(t, err.Error(), "calc_viewed")
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	tracker := NewTracker(NewLogSink(zap.New(core)), NewSession(UTM{}, nil))

	require.NoError(t, tracker.Track(context.Background(), ABVariantAssigned{Test: TestSecondaryCTA, Variant: VariantA}))

	entries := logs.FilterMessage("analytics event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ab_variant_assigned", fields["event"])
	assert.Equal(t, "A", fields["ab"])
}

func TestEventsFromQuoteAndSubmission(t *testing.T) {
	calc, err := pricing.NewCalculator(tariff.Current())
	require.NoError(t, err)
	q, err := quote.Build(calc, pricing.Normalize(pricing.RawParameters{PeriodMonths: 12, PatientBase: 25000, Branches: 2, MessagingNumbers: 5, Marketing: "advanced"}))
	require.NoError(t, err)

	ev := QuoteSubmittedFrom(q)
	assert.True(t, decimal.NewFromInt(77700).Equal(ev.Monthly))
	assert.True(t, decimal.NewFromInt(932400).Equal(ev.Total))
	assert.Equal(t, q.Parameters, ev.Parameters)
	assert.Equal(t, string(q.Fingerprint()), ev.QuoteID)

	s, err := quote.NewSubmission(quote.Contact{FullName: "Иван", Clinic: "Дента", Phone: "89001234567", MIS: "IDENT"}, q, fixedNow)
	require.NoError(t, err)
	applied := ApplySubmittedFrom(s)
	assert.Equal(t, s.ID.String(), applied.SubmissionID)
	assert.Equal(t, quote.SourceApply, applied.Source)
	assert.Equal(t, "apply_submit", applied.Name())
}

func TestFunnelHappyPath(t *testing.T) {
	ctx := context.Background()
	tracker, sink := newTestTracker(map[string]Variant{TestPeriodTooltip: VariantB})
	f := NewFunnel(tracker)

	require.NoError(t, f.View(ctx))
	require.NoError(t, f.Edit(ctx))
	require.NoError(t, f.Edit(ctx))
	require.NoError(t, f.Breakdown(ctx))
	require.NoError(t, f.PDF(ctx, testQuote(t)))
	assert.Equal(t, StepPDF, f.Current())
	require.NoError(t, f.Submit(ctx))

	assert.Equal(t, []string{
		"calc_viewed", "funnel_step",
		"funnel_step",
		"funnel_step", "calc_breakdown_view",
		"funnel_step", "calc_saved_pdf",
		"funnel_step", "ab_result",
	}, sink.Names())

	saved, ok := sink.Envelopes()[6].Event.(PDFSaved)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(77700).Equal(saved.Monthly))
	assert.True(t, decimal.NewFromInt(932400).Equal(saved.Total))

	envs := sink.Envelopes()
	result, ok := envs[len(envs)-1].Event.(ABResult)
	require.True(t, ok)
	assert.Equal(t, VariantB, result.Variant)
	assert.True(t, result.Success)
	assert.Equal(t, map[Step]int{
		StepView: 1, StepEdit: 2, StepBreakdown: 1, StepPDF: 1, StepEmail: 0, StepSubmit: 1,
	}, result.Steps)
}

func TestFunnelOnlyAdvancesFromPredecessor(t *testing.T) {
	ctx := context.Background()
	tracker, sink := newTestTracker(nil)
	f := NewFunnel(tracker)

	q := testQuote(t)
	require.NoError(t, f.Breakdown(ctx))
	require.NoError(t, f.Email(ctx, "clinic@example.ru", q))
	assert.Equal(t, StepView, f.Current())
	assert.Equal(t, []string{"calc_breakdown_view", "calc_request_quote_email"}, sink.Names())

	requested, ok := sink.Envelopes()[1].Event.(QuoteEmailRequested)
	require.True(t, ok)
	assert.Equal(t, "clinic@example.ru", requested.Email)
	assert.True(t, decimal.NewFromInt(932400).Equal(requested.Total))

	require.NoError(t, f.Edit(ctx))
	require.NoError(t, f.Breakdown(ctx))
	require.NoError(t, f.Email(ctx, "clinic@example.ru", q))
	require.NoError(t, f.PDF(ctx, q))
	assert.Equal(t, StepEmail, f.Current())

	counts := f.Counts()
	assert.Equal(t, 2, counts[StepBreakdown])
	assert.Equal(t, 2, counts[StepEmail])
	assert.Equal(t, 1, counts[StepPDF])
}

func TestFunnelSubmitFromAnyStep(t *testing.T) {
	tracker, sink := newTestTracker(nil)
	f := NewFunnel(tracker)

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, StepSubmit, f.Current())
	assert.Equal(t, []string{"funnel_step", "ab_result"}, sink.Names())
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls, last atomic.Int64
	for i := 1; i <= 5; i++ {
		n := int64(i)
		d.Trigger(func() {
			calls.Add(1)
			last.Store(n)
		})
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, int64(5), last.Load())
}

func TestDebouncerFlushAndStop(t *testing.T) {
	d := NewDebouncer(time.Hour)

	var calls atomic.Int64
	d.Trigger(func() { calls.Add(1) })
	d.Flush()
	assert.Equal(t, int64(1), calls.Load())

	d.Flush()
	assert.Equal(t, int64(1), calls.Load())

	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Flush()
	d.Trigger(func() { calls.Add(1) })
	d.Flush()
	assert.Equal(t, int64(1), calls.Load())
}

func TestTrackDebounced(t *testing.T) {
	tracker, sink := newTestTracker(nil)
	d := NewDebouncer(time.Hour)
	ctx := context.Background()

	for _, branches := range []int{2, 3, 4} {
		p := pricing.Normalize(pricing.RawParameters{Branches: branches})
		tracker.TrackDebounced(ctx, d, ParamChanged{Parameters: p})
	}
	assert.Empty(t, sink.Names())

	d.Flush()
	envs := sink.Envelopes()
	require.Len(t, envs, 1)
	assert.Equal(t, 4, envs[0].Event.(ParamChanged).Parameters.Branches)
}

func TestAssignerPersistsVariant(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryVariantStore()

	var draws int
	a := NewAssigner(store, WithRandom(func() float64 {
		draws++
		return 0.05
	}))

	v, err := a.Variant(ctx, TestPeriodTooltip)
	require.NoError(t, err)
	assert.Equal(t, VariantB, v)

	v, err = a.Variant(ctx, TestPeriodTooltip)
	require.NoError(t, err)
	assert.Equal(t, VariantB, v)
	assert.Equal(t, 1, draws)

	stored, ok, err := store.Get(ctx, "calc_ab_period_tooltip")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "B", stored)
}

func TestAssignerShareAndCorruptValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryVariantStore()
	require.NoError(t, store.Set(ctx, "calc_ab_secondary_cta", "C"))

	a := NewAssigner(store, WithRandom(func() float64 { return 0.1 }))
	active, err := a.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]Variant{TestPeriodTooltip: VariantA, TestSecondaryCTA: VariantA}, active)

	everyone := NewAssigner(NewMemoryVariantStore(), WithBShare(1), WithRandom(func() float64 { return 0.99 }))
	v, err := everyone.Variant(ctx, TestSecondaryCTA)
	require.NoError(t, err)
	assert.Equal(t, VariantB, v)
}

func TestIsTestActive(t *testing.T) {
	assert.True(t, IsTestActive(TestPeriodTooltip))
	assert.True(t, IsTestActive(TestSecondaryCTA))
	assert.False(t, IsTestActive("hero_banner"))
}
