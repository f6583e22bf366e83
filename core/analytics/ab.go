package analytics

import (
	"context"
	"math/rand"
	"sync"

	"clinic-tariff/internal/errors"
)

// Variant is an A/B bucket
type Variant string

const (
	VariantA Variant = "A"
	VariantB Variant = "B"
)

const (
	// TestPeriodTooltip toggles the period discount hint
	TestPeriodTooltip = "period_tooltip"
	// TestSecondaryCTA toggles the secondary call to action
	TestSecondaryCTA = "secondary_cta"

	// DefaultBShare is the fraction of traffic sent to variant B
	DefaultBShare = 0.1

	storageKeyPrefix = "calc_ab_"
)

// KnownTests lists the experiments currently running
var KnownTests = []string{TestPeriodTooltip, TestSecondaryCTA}

// IsTestActive reports whether test is a running experiment
func IsTestActive(test string) bool {
	for _, t := range KnownTests {
		if t == test {
			return true
		}
	}
	return false
}

// VariantStore persists assignments so a visitor keeps their bucket
type VariantStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryVariantStore is an in-process VariantStore
type MemoryVariantStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryVariantStore creates an empty store
func NewMemoryVariantStore() *MemoryVariantStore {
	return &MemoryVariantStore{values: make(map[string]string)}
}

// Get implements VariantStore
func (s *MemoryVariantStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements VariantStore
func (s *MemoryVariantStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Assigner buckets visitors into A/B variants
type Assigner struct {
	store  VariantStore
	random func() float64
	bShare float64
}

// AssignerOption configures an Assigner
type AssignerOption func(*Assigner)

// WithRandom overrides the random source, which must return values in [0, 1)
func WithRandom(random func() float64) AssignerOption {
	return func(a *Assigner) { a.random = random }
}

// WithBShare sets the fraction of new visitors sent to variant B
func WithBShare(share float64) AssignerOption {
	return func(a *Assigner) { a.bShare = share }
}

// NewAssigner creates an assigner backed by store
func NewAssigner(store VariantStore, opts ...AssignerOption) *Assigner {
	a := &Assigner{store: store, random: rand.Float64, bShare: DefaultBShare}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Variant returns the stored variant for test or assigns and stores a new one.
// Stored values other than A or B are reassigned.
func (a *Assigner) Variant(ctx context.Context, test string) (Variant, error) {
	key := storageKeyPrefix + test

	stored, ok, err := a.store.Get(ctx, key)
	if err != nil {
		return VariantA, errors.Wrapf(errors.TypeInternal, err, "read variant for %s", test)
	}
	if ok && (Variant(stored) == VariantA || Variant(stored) == VariantB) {
		return Variant(stored), nil
	}

	v := VariantA
	if a.random() < a.bShare {
		v = VariantB
	}
	if err := a.store.Set(ctx, key, string(v)); err != nil {
		return VariantA, errors.Wrapf(errors.TypeInternal, err, "store variant for %s", test)
	}
	return v, nil
}

// Active returns the variant of every known test
func (a *Assigner) Active(ctx context.Context) (map[string]Variant, error) {
	out := make(map[string]Variant, len(KnownTests))
	for _, test := range KnownTests {
		v, err := a.Variant(ctx, test)
		if err != nil {
			return nil, err
		}
		out[test] = v
	}
	return out, nil
}
