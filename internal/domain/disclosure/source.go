package disclosure

import (
	"fmt"
	"strings"
)

// SourceType identifies one disclosure stream. Each source type owns its own
// sync checkpoint.
type SourceType string

const (
	SourceSenate   SourceType = "senate"
	SourceHouse    SourceType = "house"
	SourceInsiders SourceType = "insiders"
)

var allSourceTypes = []SourceType{SourceSenate, SourceHouse, SourceInsiders}

func AllSourceTypes() []SourceType {
	out := make([]SourceType, len(allSourceTypes))
	copy(out, allSourceTypes)
	return out
}

func ParseSourceType(raw string) (SourceType, error) {
	switch SourceType(strings.ToLower(strings.TrimSpace(raw))) {
	case SourceSenate:
		return SourceSenate, nil
	case SourceHouse:
		return SourceHouse, nil
	case SourceInsiders:
		return SourceInsiders, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSourceType, raw)
	}
}

func (s SourceType) Valid() bool {
	_, err := ParseSourceType(string(s))
	return err == nil
}

// TraderKind returns the kind of trader disclosed by this stream.
func (s SourceType) TraderKind() TraderKind {
	if s == SourceInsiders {
		return TraderInsider
	}
	return TraderLegislator
}

func (s SourceType) Label() string {
	switch s {
	case SourceSenate:
		return "Senate"
	case SourceHouse:
		return "House"
	case SourceInsiders:
		return "Corporate insiders"
	default:
		return string(s)
	}
}
