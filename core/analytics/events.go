// Package analytics - Calculator funnel analytics
// Events are typed structs; a Tracker wraps them in envelopes carrying the
// session's A/B variant and UTM tags and hands them to a Sink.
package analytics

import (
	"github.com/shopspring/decimal"

	"clinic-tariff/core/pricing"
	"clinic-tariff/core/quote"
)

// Event is anything a Tracker can emit
type Event interface {
	// Name is the event name as seen by the analytics backend
	Name() string
}

// CalcViewed is emitted once when the calculator is opened
type CalcViewed struct{}

func (CalcViewed) Name() string { return "calc_viewed" }

// FunnelStepReached is emitted when the funnel advances
type FunnelStepReached struct {
	Step Step `json:"step"`
}

func (FunnelStepReached) Name() string { return "funnel_step" }

// ParamChanged carries the normalized parameters after an edit
type ParamChanged struct {
	Parameters pricing.Parameters `json:"parameters"`
	Platform   string             `json:"platform,omitempty"`
}

func (ParamChanged) Name() string { return "calc_param_change" }

// BreakdownViewed is emitted whenever the price breakdown is opened
type BreakdownViewed struct{}

func (BreakdownViewed) Name() string { return "calc_breakdown_view" }

// QuoteSubmitted is emitted when a visitor asks for a quote
type QuoteSubmitted struct {
	QuoteID         string             `json:"quote_id"`
	Monthly         decimal.Decimal    `json:"monthly"`
	Total           decimal.Decimal    `json:"total"`
	DiscountPercent decimal.Decimal    `json:"discount_percent"`
	Parameters      pricing.Parameters `json:"parameters"`
}

func (QuoteSubmitted) Name() string { return "calc_submitted" }

// QuoteSubmittedFrom builds the event from a quote
func QuoteSubmittedFrom(q quote.Quote) QuoteSubmitted {
	return QuoteSubmitted{
		QuoteID:         string(q.Fingerprint()),
		Monthly:         q.MonthlyTotal,
		Total:           q.Breakdown.TotalForPeriod,
		DiscountPercent: q.DiscountPercent,
		Parameters:      q.Parameters,
	}
}

// PDFSaved is emitted when the quote is exported
type PDFSaved struct {
	Monthly decimal.Decimal `json:"monthly"`
	Total   decimal.Decimal `json:"total"`
}

func (PDFSaved) Name() string { return "calc_saved_pdf" }

// PDFSavedFrom builds the event from a quote
func PDFSavedFrom(q quote.Quote) PDFSaved {
	return PDFSaved{Monthly: q.MonthlyTotal, Total: q.Breakdown.TotalForPeriod}
}

// QuoteEmailRequested is emitted when the quote is requested by e-mail
type QuoteEmailRequested struct {
	Email   string          `json:"email"`
	Monthly decimal.Decimal `json:"monthly"`
	Total   decimal.Decimal `json:"total"`
}

func (QuoteEmailRequested) Name() string { return "calc_request_quote_email" }

// QuoteEmailRequestedFrom builds the event for sending q to email
func QuoteEmailRequestedFrom(email string, q quote.Quote) QuoteEmailRequested {
	return QuoteEmailRequested{Email: email, Monthly: q.MonthlyTotal, Total: q.Breakdown.TotalForPeriod}
}

// ApplySubmitted is emitted after a valid submission
type ApplySubmitted struct {
	SubmissionID string `json:"submission_id"`
	Source       string `json:"source"`
	MIS          string `json:"mis"`
}

func (ApplySubmitted) Name() string { return "apply_submit" }

// ApplySubmittedFrom builds the event from a submission
func ApplySubmittedFrom(s quote.Submission) ApplySubmitted {
	return ApplySubmitted{
		SubmissionID: s.ID.String(),
		Source:       s.Source,
		MIS:          s.Contact.MIS,
	}
}

// ABVariantAssigned reports the variant a session landed in
type ABVariantAssigned struct {
	Test    string  `json:"test"`
	Variant Variant `json:"variant"`
}

func (ABVariantAssigned) Name() string { return "ab_variant_assigned" }

// ABResult is emitted on submit with the funnel counters
type ABResult struct {
	Test    string       `json:"test"`
	Variant Variant      `json:"variant"`
	Success bool         `json:"success"`
	Steps   map[Step]int `json:"steps"`
}

func (ABResult) Name() string { return "ab_result" }

// TooltipShown is emitted when a field hint is opened
type TooltipShown struct {
	Field string `json:"field"`
}

func (TooltipShown) Name() string { return "tooltip_show" }
