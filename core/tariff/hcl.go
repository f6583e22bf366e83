package tariff

import (
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"

	"clinic-tariff/internal/errors"
)

// Money and percent attributes are decoded as strings so that HCL
// numbers reach decimal.Decimal without a float64 round trip.

type tariffFile struct {
	Revision revisionBlock `hcl:"revision,block"`
}

type revisionBlock struct {
	Name                     string           `hcl:"name,label"`
	DailySupportPrice        string           `hcl:"daily_support_price"`
	MessagingPricePerNumber  string           `hcl:"messaging_price_per_number"`
	IncludedMessagingNumbers int              `hcl:"included_messaging_numbers,optional"`
	DiscountCapPercent       string           `hcl:"discount_cap_percent"`
	PatientTiers             []patientBlock   `hcl:"patient_tier,block"`
	Marketing                []marketingBlock `hcl:"marketing,block"`
	PeriodDiscounts          []periodBlock    `hcl:"period_discount,block"`
	NetworkDiscounts         []networkBlock   `hcl:"network_discount,block"`
}

type patientBlock struct {
	UpTo  int    `hcl:"up_to,optional"`
	Price string `hcl:"price"`
}

type marketingBlock struct {
	Tier           string  `hcl:"tier,label"`
	Price          string  `hcl:"price"`
	Implementation *string `hcl:"implementation,optional"`
}

type periodBlock struct {
	Months  int    `hcl:"months"`
	Percent string `hcl:"percent"`
}

type networkBlock struct {
	MinBranches int    `hcl:"min_branches"`
	Percent     string `hcl:"percent"`
}

// LoadFile reads and validates an HCL tariff file
func LoadFile(path string) (Revision, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Revision{}, errors.Tariff("cannot read tariff file", err).WithContext("path", path)
	}
	return Parse(src, path)
}

// Parse decodes an HCL tariff document into a validated revision
func Parse(src []byte, filename string) (Revision, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return Revision{}, errors.Tariff("cannot parse tariff file", diags).WithContext("path", filename)
	}

	var doc tariffFile
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return Revision{}, errors.Tariff("cannot decode tariff file", diags).WithContext("path", filename)
	}

	rev, err := doc.Revision.toRevision()
	if err != nil {
		return Revision{}, err
	}
	if err := rev.Validate(); err != nil {
		return Revision{}, err
	}
	return rev, nil
}

func (b revisionBlock) toRevision() (Revision, error) {
	var p amountParser

	rev := Revision{
		Name:                     b.Name,
		DailySupportPrice:        p.parse("daily_support_price", b.DailySupportPrice),
		MessagingPricePerNumber:  p.parse("messaging_price_per_number", b.MessagingPricePerNumber),
		IncludedMessagingNumbers: b.IncludedMessagingNumbers,
		DiscountCapPercent:       p.parse("discount_cap_percent", b.DiscountCapPercent),
		MarketingPrices:          make(map[MarketingTier]decimal.Decimal, len(b.Marketing)),
	}

	for _, t := range b.PatientTiers {
		rev.PatientBaseTiers = append(rev.PatientBaseTiers, PatientTier{
			UpTo:  t.UpTo,
			Price: p.parse("patient_tier.price", t.Price),
		})
	}
	// Unlimited (0) sorts last
	sort.SliceStable(rev.PatientBaseTiers, func(i, j int) bool {
		a, c := rev.PatientBaseTiers[i].UpTo, rev.PatientBaseTiers[j].UpTo
		if a == 0 || c == 0 {
			return c == 0 && a != 0
		}
		return a < c
	})

	for _, m := range b.Marketing {
		tier, ok := ParseMarketingTier(m.Tier)
		if !ok {
			return Revision{}, invalid("unknown marketing tier: "+m.Tier, "marketing")
		}
		if _, dup := rev.MarketingPrices[tier]; dup {
			return Revision{}, invalid("duplicate marketing tier: "+m.Tier, "marketing")
		}
		rev.MarketingPrices[tier] = p.parse("marketing.price", m.Price)
		if m.Implementation != nil {
			if rev.ImplementationCosts == nil {
				rev.ImplementationCosts = make(map[MarketingTier]decimal.Decimal)
			}
			rev.ImplementationCosts[tier] = p.parse("marketing.implementation", *m.Implementation)
		}
	}

	for _, d := range b.PeriodDiscounts {
		rev.PeriodDiscounts = append(rev.PeriodDiscounts, PeriodDiscount{
			Months:  d.Months,
			Percent: p.parse("period_discount.percent", d.Percent),
		})
	}
	sort.SliceStable(rev.PeriodDiscounts, func(i, j int) bool {
		return rev.PeriodDiscounts[i].Months < rev.PeriodDiscounts[j].Months
	})

	for _, n := range b.NetworkDiscounts {
		rev.NetworkDiscounts = append(rev.NetworkDiscounts, NetworkDiscount{
			MinBranches: n.MinBranches,
			Percent:     p.parse("network_discount.percent", n.Percent),
		})
	}
	sort.SliceStable(rev.NetworkDiscounts, func(i, j int) bool {
		return rev.NetworkDiscounts[i].MinBranches < rev.NetworkDiscounts[j].MinBranches
	})

	if p.err != nil {
		return Revision{}, p.err
	}
	return rev, nil
}

// amountParser keeps the first parse failure
type amountParser struct {
	err error
}

func (p *amountParser) parse(field, s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil && p.err == nil {
		p.err = errors.Tariff(fmt.Sprintf("%s is not a number: %q", field, s), err).WithContext("field", field)
	}
	return d
}

// Render writes a revision as an HCL tariff document accepted by Parse
func Render(r Revision) []byte {
	f := hclwrite.NewEmptyFile()
	block := f.Body().AppendNewBlock("revision", []string{r.Name})
	body := block.Body()

	body.SetAttributeValue("daily_support_price", number(r.DailySupportPrice))
	body.SetAttributeValue("messaging_price_per_number", number(r.MessagingPricePerNumber))
	body.SetAttributeValue("included_messaging_numbers", cty.NumberIntVal(int64(r.IncludedMessagingNumbers)))
	body.SetAttributeValue("discount_cap_percent", number(r.DiscountCapPercent))

	for _, t := range r.PatientBaseTiers {
		body.AppendNewline()
		tb := body.AppendNewBlock("patient_tier", nil).Body()
		if t.UpTo != 0 {
			tb.SetAttributeValue("up_to", cty.NumberIntVal(int64(t.UpTo)))
		}
		tb.SetAttributeValue("price", number(t.Price))
	}

	for _, tier := range MarketingTiers {
		price, ok := r.MarketingPrices[tier]
		if !ok {
			continue
		}
		body.AppendNewline()
		mb := body.AppendNewBlock("marketing", []string{string(tier)}).Body()
		mb.SetAttributeValue("price", number(price))
		if cost, ok := r.ImplementationCosts[tier]; ok {
			mb.SetAttributeValue("implementation", number(cost))
		}
	}

	for _, d := range r.PeriodDiscounts {
		body.AppendNewline()
		pb := body.AppendNewBlock("period_discount", nil).Body()
		pb.SetAttributeValue("months", cty.NumberIntVal(int64(d.Months)))
		pb.SetAttributeValue("percent", number(d.Percent))
	}

	for _, n := range r.NetworkDiscounts {
		body.AppendNewline()
		nb := body.AppendNewBlock("network_discount", nil).Body()
		nb.SetAttributeValue("min_branches", cty.NumberIntVal(int64(n.MinBranches)))
		nb.SetAttributeValue("percent", number(n.Percent))
	}

	return f.Bytes()
}

func number(d decimal.Decimal) cty.Value {
	return cty.MustParseNumberVal(d.String())
}
