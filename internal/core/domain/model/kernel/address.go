package kernel

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"dispatch/internal/pkg/errs"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ErrPhoneIsMalformed is returned for a contact phone outside E.164 shape.
var ErrPhoneIsMalformed = errs.NewValueIsInvalidError("contact phone")

// Address is one stop of a delivery: where to go and whom to call there.
// Coordinates are optional; without them distance estimation and matching
// are skipped for the stop.
type Address struct {
	line         string
	commune      string
	point        *GeoPoint
	contactName  string
	contactPhone string
	contactEmail string
}

// AddressInput carries raw fields for NewAddress.
type AddressInput struct {
	Line         string
	Commune      string
	Point        *GeoPoint
	ContactName  string
	ContactPhone string
	ContactEmail string
}

// NewAddress validates the address line, commune and contact phone, all of
// which are required. Phone separators (spaces, dashes, dots, parentheses)
// are stripped before validation. Email is optional.
func NewAddress(in AddressInput) (Address, error) {
	a := Address{
		line:         strings.TrimSpace(in.Line),
		commune:      strings.TrimSpace(in.Commune),
		contactName:  strings.TrimSpace(in.ContactName),
		contactPhone: normalizePhone(in.ContactPhone),
		contactEmail: strings.TrimSpace(in.ContactEmail),
	}
	if in.Point != nil {
		p := *in.Point
		a.point = &p
	}

	var problems []error
	if a.line == "" {
		problems = append(problems, errs.NewValueIsRequiredError("address"))
	}
	if a.commune == "" {
		problems = append(problems, errs.NewValueIsRequiredError("commune"))
	}
	switch {
	case a.contactPhone == "":
		problems = append(problems, errs.NewValueIsRequiredError("contact phone"))
	case !phonePattern.MatchString(a.contactPhone):
		problems = append(problems, ErrPhoneIsMalformed)
	}
	if a.contactEmail != "" {
		if _, err := mail.ParseAddress(a.contactEmail); err != nil {
			problems = append(problems, errs.NewValueIsInvalidErrorWithCause("contact email", err))
		}
	}
	if err := errors.Join(problems...); err != nil {
		return Address{}, err
	}
	return a, nil
}

// Line returns the street address.
func (a Address) Line() string { return a.line }

// Commune returns the commune or district.
func (a Address) Commune() string { return a.commune }

// Point returns a copy of the coordinates, or nil when unknown.
func (a Address) Point() *GeoPoint {
	if a.point == nil {
		return nil
	}
	p := *a.point
	return &p
}

// ContactName returns the person to meet at the stop.
func (a Address) ContactName() string { return a.contactName }

// ContactPhone returns the normalized phone number.
func (a Address) ContactPhone() string { return a.contactPhone }

// ContactEmail returns the optional email address.
func (a Address) ContactEmail() string { return a.contactEmail }

// HasContactChannel reports whether a code can be delivered to the stop.
func (a Address) HasContactChannel() bool {
	return a.contactPhone != "" || a.contactEmail != ""
}

// SameGeography reports whether two addresses resolve to the same place for
// estimation purposes.
func (a Address) SameGeography(other Address) bool {
	if a.line != other.line || a.commune != other.commune {
		return false
	}
	switch {
	case a.point == nil && other.point == nil:
		return true
	case a.point == nil || other.point == nil:
		return false
	default:
		return a.point.IsEqual(*other.point)
	}
}

func normalizePhone(raw string) string {
	return strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
}
