// Package pricing - Tariff calculator engine
// Calculate is a pure function of the parameters and the tariff revision.
// Normalize turns raw UI/CLI input into parameters the engine accepts.
package pricing

import (
	"clinic-tariff/core/tariff"
)

// Domain bounds of the patient base
const (
	MinPatientBase  = 1000
	MaxPatientBase  = 100000
	PatientBaseStep = 1000
)

// Field names used in domain errors
const (
	FieldPeriod    = "period_months"
	FieldPatients  = "patient_base"
	FieldBranches  = "branches"
	FieldMessaging = "messaging_numbers"
	FieldMarketing = "marketing"
	FieldSupport   = "support"
)

// Parameters is a normalized calculator input
type Parameters struct {
	// PeriodMonths is the subscription length
	PeriodMonths int `json:"period_months"`

	// PatientBase is the clinic's patient base size
	PatientBase int `json:"patient_base"`

	// Branches is the number of clinic branches
	Branches int `json:"branches"`

	// MessagingNumbers is the count of extra messaging numbers
	MessagingNumbers int `json:"messaging_numbers"`

	// Marketing is the marketing-support tier
	Marketing tariff.MarketingTier `json:"marketing"`

	// Support is the technical support schedule
	Support tariff.SupportTier `json:"support"`
}

// RawParameters is un-normalized input straight from controls or flags
type RawParameters struct {
	PeriodMonths     float64 `json:"period_months"`
	PatientBase      float64 `json:"patient_base"`
	Branches         int     `json:"branches"`
	MessagingNumbers int     `json:"messaging_numbers"`
	Marketing        string  `json:"marketing"`
	Support          string  `json:"support"`
}

// Raw converts normalized parameters back into raw form
func (p Parameters) Raw() RawParameters {
	return RawParameters{
		PeriodMonths:     float64(p.PeriodMonths),
		PatientBase:      float64(p.PatientBase),
		Branches:         p.Branches,
		MessagingNumbers: p.MessagingNumbers,
		Marketing:        string(p.Marketing),
		Support:          string(p.Support),
	}
}

// Flags are UI hints derived from the parameters
type Flags struct {
	// BigBase marks a patient base at the top of the range
	BigBase bool `json:"big_base"`

	// BigNetwork marks a network of ten or more branches
	BigNetwork bool `json:"big_network"`
}

// FlagsFor computes the UI hints for parameters
func FlagsFor(p Parameters) Flags {
	return Flags{
		BigBase:    p.PatientBase >= MaxPatientBase,
		BigNetwork: p.Branches >= 10,
	}
}
