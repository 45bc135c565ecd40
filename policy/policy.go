// Package policy decides which torrents on a Transmission instance are
// eligible for deletion. A DeletePolicy pairs a Precondition, which gates
// whether the policy governs a torrent at all, with a Condition, which
// decides whether a governed torrent currently qualifies for deletion.
package policy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/boinkor-net/gearbox-maintenance/torrent"
)

// ErrEmptyCondition is the error returned by NewCondition when none of the
// thresholds is set. Such a condition would mark every governed torrent as
// immediately eligible for deletion.
var ErrEmptyCondition = errors.New("set at least one of max_ratio, min_seeding_time, max_seeding_time")

// Precondition gates whether a policy governs a torrent at all. A torrent
// failing the precondition is invisible to the policy, even for reporting.
type Precondition struct {
	// Trackers holds the tracker hostnames (only the host, not the full
	// announce URL) the policy applies to. Hostname comparison is exact
	// and case-sensitive.
	Trackers map[string]bool

	// MinFileCount and MaxFileCount bound the number of files in a
	// governed torrent, inclusive on both ends. A nil bound is unbounded
	// on that side.
	MinFileCount *int
	MaxFileCount *int
}

// NewPrecondition builds a Precondition governing torrents announced to any
// of the given tracker hostnames.
func NewPrecondition(trackers []string) Precondition {
	set := make(map[string]bool, len(trackers))
	for _, host := range trackers {
		set[host] = true
	}
	return Precondition{Trackers: set}
}

// Governs returns true if the policy considers the torrent at all: it must
// be seeding, announce to one of the precondition's trackers, and fall
// within the file-count bounds.
func (p Precondition) Governs(t torrent.Torrent) bool {
	if t.Status != torrent.Seeding {
		return false
	}

	announced := false
	for _, host := range t.TrackerHosts() {
		if p.Trackers[host] {
			announced = true
			break
		}
	}
	if !announced {
		return false
	}

	if p.MinFileCount != nil && t.FileCount < *p.MinFileCount {
		return false
	}
	if p.MaxFileCount != nil && t.FileCount > *p.MaxFileCount {
		return false
	}

	return true
}

// Condition decides whether a governed torrent qualifies for deletion. At
// least one threshold must be set; see NewCondition.
type Condition struct {
	// MaxRatio is the upload ratio at which a torrent qualifies for
	// deletion, even if it has been seeding for less than MaxSeedingTime.
	MaxRatio *float64

	// MinSeedingTime is the grace period: a torrent seeding less than
	// this never qualifies, regardless of its ratio.
	MinSeedingTime *time.Duration

	// MaxSeedingTime is the seeding duration at which a torrent
	// qualifies for deletion regardless of ratio.
	MaxSeedingTime *time.Duration
}

// NewCondition validates a Condition. It returns ErrEmptyCondition if none
// of the thresholds is set.
func NewCondition(c Condition) (Condition, error) {
	if c.MaxRatio == nil && c.MinSeedingTime == nil && c.MaxSeedingTime == nil {
		return Condition{}, ErrEmptyCondition
	}
	return c, nil
}

// Match evaluates the condition against a torrent at the given instant. It
// assumes the precondition has already been checked and does not re-check
// it.
//
// The minimum seeding time is a hard gate: a torrent inside its grace
// period never matches, no matter its ratio. Past the gate, ratio is
// checked before seeding time, so when both thresholds are satisfied the
// outcome is MatchedRatio.
func (c Condition) Match(t torrent.Torrent, now time.Time) Match {
	if t.DoneDate.IsZero() {
		// Never finished downloading; a seeding-duration test can
		// never hold, so leave it alone.
		return Match{Kind: NoMatch}
	}
	if t.DoneDate.Unix() == 0 && c.MinSeedingTime != nil {
		// Transmission's "never completed" sentinel cannot
		// productively age past a grace period.
		return Match{Kind: NoMatch}
	}

	seedTime := now.Sub(t.DoneDate)

	if c.MinSeedingTime != nil && seedTime < *c.MinSeedingTime {
		return Match{Kind: NoMatch}
	}

	if c.MaxRatio != nil && t.Ratio() >= *c.MaxRatio {
		return matchedRatio(t.Ratio())
	}

	if c.MaxSeedingTime != nil && seedTime >= *c.MaxSeedingTime {
		return matchedSeedTime(seedTime)
	}

	return Match{Kind: NoMatch}
}

// String implements Stringer for a Condition.
func (c Condition) String() string {
	var parts []string
	if c.MinSeedingTime != nil {
		parts = append(parts, fmt.Sprintf("seeded>=%s", *c.MinSeedingTime))
	}
	if c.MaxSeedingTime != nil {
		parts = append(parts, fmt.Sprintf("seeded<=%s", *c.MaxSeedingTime))
	}
	if c.MaxRatio != nil {
		parts = append(parts, fmt.Sprintf("ratio>=%v", *c.MaxRatio))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// DeletePolicy names a Precondition/Condition pair and records whether a
// matched torrent's downloaded data should be removed from disk along with
// its metadata. Immutable once constructed.
type DeletePolicy struct {
	// Name identifies the policy in logs and metrics. When empty, the
	// policy's position in its instance's list is used instead; see
	// NameOrIndex.
	Name string

	Scope      Precondition
	MatchWhen  Condition
	DeleteData bool
}

// NewDeletePolicy builds a DeletePolicy, validating its condition.
func NewDeletePolicy(name string, scope Precondition, matchWhen Condition, deleteData bool) (DeletePolicy, error) {
	validated, err := NewCondition(matchWhen)
	if err != nil {
		return DeletePolicy{}, errors.Wrapf(err, "policy %q", name)
	}
	return DeletePolicy{
		Name:       name,
		Scope:      scope,
		MatchWhen:  validated,
		DeleteData: deleteData,
	}, nil
}

// Evaluate runs the precondition gate and, if it holds, the condition
// matcher, at the given instant.
func (p DeletePolicy) Evaluate(t torrent.Torrent, now time.Time) Match {
	if !p.Scope.Governs(t) {
		return Match{Kind: NotApplicable}
	}
	return p.MatchWhen.Match(t, now)
}

// NameOrIndex returns the policy name, falling back to the policy's
// position in its instance's policy list.
func (p DeletePolicy) NameOrIndex(index int) string {
	if p.Name != "" {
		return p.Name
	}
	return strconv.Itoa(index)
}

// String implements Stringer for a DeletePolicy.
func (p DeletePolicy) String() string {
	trackers := make([]string, 0, len(p.Scope.Trackers))
	for host := range p.Scope.Trackers {
		trackers = append(trackers, host)
	}
	sort.Strings(trackers)
	return fmt.Sprintf("DeletePolicy[%s on %s when %s delete_data=%t]",
		p.Name, strings.Join(trackers, ","), p.MatchWhen, p.DeleteData)
}
