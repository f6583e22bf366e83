// Package cmd - calculator parameter flags shared by quote, normalize and apply
package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"clinic-tariff/core/analytics"
	"clinic-tariff/core/pricing"
	"clinic-tariff/core/tariff"
	"clinic-tariff/internal/errors"
	"clinic-tariff/internal/logging"
)

// paramFlags holds raw calculator input as typed on the command line
type paramFlags struct {
	period     float64
	patients   float64
	branches   int
	messaging  int
	marketing  string
	support    string
	revision   string
	tariffFile string
}

func (f *paramFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.Float64VarP(&f.period, "period", "p", 12, "subscription period in months (1, 3, 6, 9, 12)")
	fl.Float64Var(&f.patients, "patients", 50000, "patient base size (1000..100000, step 1000)")
	fl.IntVarP(&f.branches, "branches", "b", 1, "number of branches")
	fl.IntVar(&f.messaging, "messaging", 0, "extra WhatsApp numbers")
	fl.StringVar(&f.marketing, "marketing", string(tariff.MarketingPremium), "marketing tier (base, advanced, premium, expert)")
	fl.StringVar(&f.support, "support", string(tariff.SupportWeekdays), "support tier (weekdays, daily)")
	f.registerRevision(cmd)
}

func (f *paramFlags) registerRevision(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.revision, "revision", "", "built-in tariff revision (default from config)")
	cmd.Flags().StringVar(&f.tariffFile, "tariff-file", "", "HCL tariff file, overrides --revision")
}

func (f *paramFlags) raw() pricing.RawParameters {
	return pricing.RawParameters{
		PeriodMonths:     f.period,
		PatientBase:      f.patients,
		Branches:         f.branches,
		MessagingNumbers: f.messaging,
		Marketing:        f.marketing,
		Support:          f.support,
	}
}

// revision resolves the tariff from flags, falling back to config
func (a *app) revision(f *paramFlags) (tariff.Revision, error) {
	file := f.tariffFile
	if file == "" && f.revision == "" {
		file = a.cfg.Tariff.File
	}
	if file != "" {
		logging.Debug("loading tariff file")
		return tariff.LoadFile(file)
	}

	name := f.revision
	if name == "" {
		name = a.cfg.Tariff.Revision
	}
	return tariff.Lookup(name)
}

// price normalizes the flags against the selected revision and builds a calculator
func (a *app) price(f *paramFlags) (*pricing.Calculator, pricing.Parameters, error) {
	rev, err := a.revision(f)
	if err != nil {
		return nil, pricing.Parameters{}, err
	}
	calc, err := pricing.NewCalculator(rev)
	if err != nil {
		return nil, pricing.Parameters{}, err
	}
	return calc, pricing.NewNormalizer(rev).Normalize(f.raw()), nil
}

// debounceDelay is the configured quiet period for parameter events
func (a *app) debounceDelay() time.Duration {
	return time.Duration(a.cfg.Analytics.DebounceMillis) * time.Millisecond
}

// trackingFlags turn on analytics for one invocation
type trackingFlags struct {
	enabled bool
	utm     string
}

func (t *trackingFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&t.enabled, "track", false, "emit analytics events to the log (default from config)")
	cmd.Flags().StringVar(&t.utm, "utm", "", "campaign query string, e.g. utm_source=yandex&utm_campaign=spring")
}

// tracking builds the session tracker and funnel, or nils when analytics is off
func (a *app) tracking(cmd *cobra.Command, t *trackingFlags) (*analytics.Tracker, *analytics.Funnel, func(), error) {
	done := func() {}
	if !t.enabled && !a.cfg.Analytics.Enabled {
		return nil, nil, done, nil
	}

	utm, err := analytics.ParseUTM(t.utm)
	if err != nil {
		return nil, nil, done, err
	}

	ctx := cmd.Context()
	assigner := analytics.NewAssigner(analytics.NewMemoryVariantStore(), analytics.WithBShare(a.cfg.Analytics.BShare))
	variants, err := assigner.Active(ctx)
	if err != nil {
		return nil, nil, done, err
	}

	events, closeEvents, err := logging.NewEventLogger(a.cfg.Logging)
	if err != nil {
		return nil, nil, done, errors.Config("opening analytics log", err)
	}
	done = func() {
		_ = events.Sync()
		closeEvents()
	}

	tracker := analytics.NewTracker(analytics.NewLogSink(events), analytics.NewSession(utm, variants))
	for _, test := range analytics.KnownTests {
		ev := analytics.ABVariantAssigned{Test: test, Variant: variants[test]}
		if err := tracker.Track(ctx, ev); err != nil {
			return nil, nil, done, err
		}
	}

	funnel := analytics.NewFunnel(tracker)
	if err := funnel.View(ctx); err != nil {
		return nil, nil, done, err
	}
	return tracker, funnel, done, nil
}
