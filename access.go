package efir

// AccessLevel classifies a caller's session for field-level redaction.
// Evaluated at read time, never stored with a record.
type AccessLevel int

const (
	AccessUnauthenticated AccessLevel = iota
	AccessLow
	AccessHigh
)

func (l AccessLevel) String() string {
	switch l {
	case AccessLow:
		return "low"
	case AccessHigh:
		return "high"
	default:
		return "unauthenticated"
	}
}

// ParseAccessLevel maps the wire representation back to a level. Unknown
// strings degrade to unauthenticated.
func ParseAccessLevel(s string) AccessLevel {
	switch s {
	case "low":
		return AccessLow
	case "high":
		return AccessHigh
	default:
		return AccessUnauthenticated
	}
}

// RedactionMarker replaces personally identifying values below high access.
const RedactionMarker = "REDACTED"

// DefaultSensitiveFields is the personally-identifying field set of an FIR
// document. Incident metadata (type, dates, location, description, officer
// details) stays visible at every level.
var DefaultSensitiveFields = []string{
	"complainantName",
	"complainantFatherName",
	"complainantGender",
	"complainantAadhaar",
	"complainantEmail",
	"complainantDOB",
	"complainantIDDate",
	"complainantIDPlace",
	"complainantOccupation",
	"complainantAddress",
	"complainantPhone",
}

// Redactor applies the tiered field-redaction policy server-side, before a
// record leaves the trust boundary.
type Redactor struct {
	sensitive map[string]struct{}
}

// NewRedactor builds a Redactor over the given sensitive field names. An
// empty set falls back to DefaultSensitiveFields.
func NewRedactor(sensitive []string) *Redactor {
	if len(sensitive) == 0 {
		sensitive = DefaultSensitiveFields
	}
	set := make(map[string]struct{}, len(sensitive))
	for _, name := range sensitive {
		set[name] = struct{}{}
	}
	return &Redactor{sensitive: set}
}

// Redact returns the record's fields filtered for the given access level.
// High access sees everything; anything below replaces each sensitive value
// with the redaction marker. The input map is never mutated.
func (r *Redactor) Redact(fields map[string]string, level AccessLevel) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if level < AccessHigh {
			if _, ok := r.sensitive[k]; ok {
				out[k] = RedactionMarker
				continue
			}
		}
		out[k] = v
	}
	return out
}
