package quote

import (
	stderrors "errors"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"clinic-tariff/internal/errors"
)

// SourceApply marks submissions made from the calculator's apply form
const SourceApply = "calculator_apply"

// MISOptions lists the clinic management systems offered on the apply form
var MISOptions = []string{
	"Dental4Windows", "ИНФОДЕНТ", "IDENT", "DENTAL PRO", "ИНФОКЛИНИКА",
	"Дент (ООО АП-DENT)", "1С: Стоматология", "STOMX", "UNIVERSE SOFT",
	"АДЕНТА", "STOMPRO", "RENOVATIO", "МЕДИАЛОГ", "КЛИНИКА ОНЛАЙН",
	"ISTOM", "ФЕНИКС", "MEDODS", "Другое",
}

// Contact is the lead attached to a submission
type Contact struct {
	// FullName of the person applying
	FullName string `json:"full_name" validate:"min=2"`

	// Clinic name
	Clinic string `json:"clinic" validate:"min=2"`

	// Phone in +7 XXX XXX XX XX form
	Phone string `json:"phone" validate:"ruphone"`

	// Email is optional
	Email string `json:"email,omitempty" validate:"omitempty,email"`

	// MIS is the clinic management system in use
	MIS string `json:"mis" validate:"required"`
}

// Submission is the payload sent when a visitor applies with a quote
type Submission struct {
	ID        uuid.UUID `json:"id"`
	Contact   Contact   `json:"contact"`
	Calc      Quote     `json:"calc"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("ruphone", func(fl validator.FieldLevel) bool {
		return len(phoneTail(fl.Field().String())) == 10
	})
	return v
}

// NewSubmission trims and validates the contact, then stamps the payload
func NewSubmission(c Contact, q Quote, now time.Time) (Submission, error) {
	c = Contact{
		FullName: strings.TrimSpace(c.FullName),
		Clinic:   strings.TrimSpace(c.Clinic),
		Phone:    NormalizePhone(c.Phone),
		Email:    strings.TrimSpace(c.Email),
		MIS:      strings.TrimSpace(c.MIS),
	}
	if err := ValidateContact(c); err != nil {
		return Submission{}, err
	}

	return Submission{
		ID:        uuid.New(),
		Contact:   c,
		Calc:      q,
		Timestamp: now.UTC(),
		Source:    SourceApply,
	}, nil
}

// ValidateContact returns an input error listing every invalid field
func ValidateContact(c Contact) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Internal("contact validation failed", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	sort.Strings(fields)

	return errors.Newf(errors.TypeInput, "invalid contact: %s", strings.Join(fields, ", ")).
		WithContext("field", fields[0]).
		WithContext("fields", fields)
}

// NormalizePhone renders a Russian number as "+7 XXX XXX XX XX".
// Numbers without a 10-digit tail keep their digits after "+7 ".
func NormalizePhone(s string) string {
	tail := phoneTail(s)
	if len(tail) != 10 {
		return "+7 " + tail
	}
	return "+7 " + tail[0:3] + " " + tail[3:6] + " " + tail[6:8] + " " + tail[8:10]
}

// phoneTail strips non-digits and a leading 7 or 8 country prefix
func phoneTail(s string) string {
	digits := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return -1
		}
		return r
	}, s)
	if strings.HasPrefix(digits, "7") || strings.HasPrefix(digits, "8") {
		return digits[1:]
	}
	return digits
}
