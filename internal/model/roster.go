package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MinParticipants = 2
	MaxParticipants = 10
	MaxNameLength   = 10
)

// NewRoster trims and validates display names. Index 0 is the host.
func NewRoster(names []string) ([]string, error) {
	if len(names) < MinParticipants {
		return nil, fmt.Errorf("%w: at least %d participants required", ErrInvalidRoster, MinParticipants)
	}
	if len(names) > MaxParticipants {
		return nil, fmt.Errorf("%w: at most %d participants allowed", ErrInvalidRoster, MaxParticipants)
	}

	roster := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidRoster)
		}
		if utf8.RuneCountInString(name) > MaxNameLength {
			return nil, fmt.Errorf("%w: name %q is longer than %d characters", ErrInvalidRoster, name, MaxNameLength)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidRoster, name)
		}
		seen[name] = struct{}{}
		roster = append(roster, name)
	}

	return roster, nil
}
