package rules

import (
	"slices"
	"strconv"
	"strings"

	neurarrow "github.com/neurarrow/neurarrow-go"
	"github.com/neurarrow/neurarrow-go/i18n"
	js "github.com/neurarrow/neurarrow-go/jsonschema"
)

// Version is a MAJOR.MINOR format version.
type Version struct {
	Major int
	Minor int
}

// Less orders versions by major, then minor.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

func (v Version) String() string { return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) }

// ParseVersion parses exactly two dot-separated runs of ASCII digits.
func ParseVersion(s string) (Version, error) {
	maj, minor, ok := strings.Cut(s, ".")
	if !ok || strings.Contains(minor, ".") || !digits(maj) || !digits(minor) {
		return Version{}, issue(neurarrow.CodeInvalidVersionFormat, s, "expected MAJOR.MINOR")
	}
	a, errA := strconv.Atoi(maj)
	b, errB := strconv.Atoi(minor)
	if errA != nil || errB != nil {
		return Version{}, issue(neurarrow.CodeInvalidVersionFormat, s, "version component out of range")
	}
	return Version{Major: a, Minor: b}, nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CheckVersion validates value as MAJOR.MINOR. With a non-nil maxVer, versions
// at or above it are rejected.
func CheckVersion(value string, maxVer *Version) error {
	v, err := ParseVersion(value)
	if err != nil {
		return err
	}
	if maxVer != nil && !v.Less(*maxVer) {
		return issue(neurarrow.CodeVersionTooNew, value, "must be below "+maxVer.String(), "max", maxVer.String())
	}
	return nil
}

// Set is a case-sensitive string set.
type Set map[string]struct{}

// NewSet builds a Set from the given members.
func NewSet(members ...string) Set {
	s := make(Set, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted lists the members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for m := range s {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

// CheckUnit fails unless value is a member of allowed.
func CheckUnit(value string, allowed Set) error {
	if !allowed.Has(value) {
		return issue(neurarrow.CodeUnknownUnit, value, "not a known unit")
	}
	return nil
}

// CheckDType fails when parse rejects value.
func CheckDType(value string, parse func(string) error) error {
	if err := parse(value); err != nil {
		iss := issue(neurarrow.CodeInvalidValueFormat, value, err.Error())
		iss[0].Cause = err
		return iss
	}
	return nil
}

// ParseInt accepts base-10 signed 64-bit integers.
func ParseInt(s string) error {
	_, err := strconv.ParseInt(s, 10, 64)
	return err
}

// ParseFloat accepts 64-bit floats.
func ParseFloat(s string) error {
	_, err := strconv.ParseFloat(s, 64)
	return err
}

func issue(code, value, hint string, kv ...any) neurarrow.Issues {
	it := neurarrow.Root().Issue(code, i18n.T(code, map[string]string{"name": value}), append([]any{"value", value}, kv...)...)
	it.Hint = hint
	return neurarrow.Issues{it}
}

// ---------- Validators ----------

// VersionRule validates MAJOR.MINOR versions below an optional bound.
type VersionRule struct {
	Max *Version
}

func (r VersionRule) Validate(_, value string) error { return CheckVersion(value, r.Max) }

func (VersionRule) Describe(s *js.Schema) {
	s.Pattern = `^[0-9]+\.[0-9]+$`
	s.Description = "MAJOR.MINOR version"
}

// UnitRule validates membership in a unit vocabulary.
type UnitRule struct {
	Allowed Set
}

func (r UnitRule) Validate(_, value string) error { return CheckUnit(value, r.Allowed) }

func (r UnitRule) Describe(s *js.Schema) {
	s.Enum = r.Allowed.Sorted()
	s.Description = "physical length unit"
}

// DTypeRule validates that a value parses as a named scalar type.
type DTypeRule struct {
	Name  string
	Parse func(string) error
}

// Int accepts integer literals.
func Int() DTypeRule { return DTypeRule{Name: "integer", Parse: ParseInt} }

// Float accepts floating-point literals.
func Float() DTypeRule { return DTypeRule{Name: "number", Parse: ParseFloat} }

func (r DTypeRule) Validate(_, value string) error { return CheckDType(value, r.Parse) }

func (r DTypeRule) Describe(s *js.Schema) {
	if r.Name == "integer" {
		s.Pattern = `^[+-]?[0-9]+$`
	}
	s.Format = r.Name
}

// EnumRule accepts one of a fixed list of values.
type EnumRule struct {
	Values []string
}

func (r EnumRule) Validate(_, value string) error {
	if !slices.Contains(r.Values, value) {
		return issue(neurarrow.CodeInvalidEnum, value, "expected one of "+strings.Join(r.Values, ", "))
	}
	return nil
}

func (r EnumRule) Describe(s *js.Schema) { s.Enum = slices.Clone(r.Values) }

// All runs validators in order and returns the first failure.
func All(vs ...neurarrow.Validator) neurarrow.Validator {
	return neurarrow.ValidatorFunc(func(key, value string) error {
		for _, v := range vs {
			if err := neurarrow.ApplyValidate(v, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}
