package policy

import (
	"fmt"
	"time"
)

// MatchKind enumerates the possible outcomes of evaluating a policy against
// a torrent. The set is closed and mutually exclusive.
type MatchKind uint8

const (
	// NotApplicable means the precondition failed: the torrent is outside
	// the policy's governed domain and must not be counted at all.
	NotApplicable MatchKind = iota

	// NoMatch means the precondition held but the torrent does not
	// qualify for deletion yet.
	NoMatch

	// MatchedRatio means the torrent qualifies because its upload ratio
	// reached the configured maximum.
	MatchedRatio

	// MatchedSeedTime means the torrent qualifies because it has been
	// seeding at least the configured maximum duration.
	MatchedSeedTime
)

// Match is the outcome of evaluating a policy against one torrent. Ratio is
// meaningful only for MatchedRatio outcomes, SeedTime only for
// MatchedSeedTime ones.
type Match struct {
	Kind     MatchKind
	Ratio    float64
	SeedTime time.Duration
}

// IsMatch returns true if the torrent qualifies for deletion.
func (m Match) IsMatch() bool {
	return m.Kind == MatchedRatio || m.Kind == MatchedSeedTime
}

// Applicable returns true unless the precondition failed.
func (m Match) Applicable() bool {
	return m.Kind != NotApplicable
}

// String implements Stringer for a Match.
func (m Match) String() string {
	switch m.Kind {
	case NotApplicable:
		return "not applicable"
	case NoMatch:
		return "no match"
	case MatchedRatio:
		return fmt.Sprintf("ratio %.2f", m.Ratio)
	case MatchedSeedTime:
		return fmt.Sprintf("seed time %s", m.SeedTime)
	}

	panic("policy: match kind has no associated name")
}

func matchedRatio(ratio float64) Match {
	return Match{Kind: MatchedRatio, Ratio: ratio}
}

func matchedSeedTime(d time.Duration) Match {
	return Match{Kind: MatchedSeedTime, SeedTime: d}
}
