package neurarrow

import (
	"fmt"
	"strings"
)

// Mode controls how strictly a table is checked against a format.
type Mode int

const (
	ModeLenient Mode = iota // Check declared fields and metadata; tolerate extras.
	ModeStrict              // Additionally reject undeclared fields and metadata keys.
	ModeSkip                // Perform no checks at all.
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case ModeLenient:
		return "lenient"
	case ModeStrict:
		return "strict"
	case ModeSkip:
		return "skip"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps "lenient", "strict" or "skip" (case-insensitive) to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lenient", "":
		return ModeLenient, nil
	case "strict":
		return ModeStrict, nil
	case "skip", "none":
		return ModeSkip, nil
	}
	return ModeLenient, fmt.Errorf("neurarrow: unknown mode %q", s)
}

// CheckOpt bundles checking options.
type CheckOpt struct {
	// FailFast stops at the first issue instead of collecting all of them.
	FailFast bool
}

func lastOpt(opts []CheckOpt) CheckOpt {
	if len(opts) == 0 {
		return CheckOpt{}
	}
	return opts[len(opts)-1]
}
