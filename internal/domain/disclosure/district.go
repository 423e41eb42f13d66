package disclosure

import (
	"fmt"
	"strconv"
	"strings"
)

// District is the parsed chamber-specific district field of a legislator
// record. Senate filings carry the two-letter state code alone; House filings
// append the numeric district to the state prefix ("CA12"). An at-large House
// seat has no number.
type District struct {
	State  string
	Number *int
}

func ParseDistrictField(source SourceType, field string) (District, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(field))
	if len(trimmed) < 2 {
		return District{}, fmt.Errorf("%w: %q", ErrInvalidDistrictField, field)
	}

	state := trimmed[:2]
	if !isAlpha(state) {
		return District{}, fmt.Errorf("%w: %q", ErrInvalidDistrictField, field)
	}

	switch source {
	case SourceSenate:
		if len(trimmed) != 2 {
			return District{}, fmt.Errorf("%w: senate field %q must be a state code", ErrInvalidDistrictField, field)
		}
		return District{State: state}, nil
	case SourceHouse:
		rest := trimmed[2:]
		if rest == "" {
			return District{State: state}, nil
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return District{}, fmt.Errorf("%w: %q", ErrInvalidDistrictField, field)
		}
		return District{State: state, Number: &n}, nil
	default:
		return District{}, fmt.Errorf("%w: source %q has no district field", ErrInvalidDistrictField, source)
	}
}

func (d District) String() string {
	if d.Number == nil {
		return d.State
	}
	return fmt.Sprintf("%s-%d", d.State, *d.Number)
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return len(s) > 0
}
