package components

import "fmt"

// Personality is a fixed categorical trait biasing one perception feature.
type Personality uint8

const (
	PersonalityExplorer Personality = iota
	PersonalitySurvivor
	PersonalityFeeder
	PersonalityLoner
	PersonalitySocial
)

// String returns the name for a Personality.
func (p Personality) String() string {
	names := PersonalityNames()
	if int(p) < len(names) {
		return names[p]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (p Personality) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Personality) UnmarshalText(b []byte) error {
	parsed, err := ParsePersonality(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePersonality maps a name back to its Personality.
func ParsePersonality(name string) (Personality, error) {
	for i, n := range PersonalityNames() {
		if n == name {
			return Personality(i), nil
		}
	}
	return 0, fmt.Errorf("unknown personality %q", name)
}

// PersonalityNames returns the names for all personalities.
// The order matches the Personality constants.
func PersonalityNames() []string {
	return []string{"explorer", "survivor", "feeder", "loner", "social"}
}

// PersonalityCount returns the number of personalities.
func PersonalityCount() int {
	return len(PersonalityNames())
}

// DeathCause records why an agent died. The zero value means alive.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseCrowd
	CauseOldAge
	CauseEnergy
	CauseCull
)

// String returns the name for a DeathCause.
func (c DeathCause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseCrowd:
		return "crowd"
	case CauseOldAge:
		return "old_age"
	case CauseEnergy:
		return "energy"
	case CauseCull:
		return "cull"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (c DeathCause) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// DeathCauses lists every terminal cause in display order.
func DeathCauses() []DeathCause {
	return []DeathCause{CauseEnergy, CauseOldAge, CauseCrowd, CauseCull}
}
