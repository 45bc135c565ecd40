package policy

import (
	"time"

	"github.com/boinkor-net/gearbox-maintenance/pkg/log"
	"github.com/boinkor-net/gearbox-maintenance/torrent"
)

// Set is the ordered collection of deletion policies bound to one instance.
type Set struct {
	policies []DeletePolicy
}

// NewSet builds a Set from an ordered list of policies.
func NewSet(policies []DeletePolicy) Set {
	return Set{policies: policies}
}

// Report accumulates, for one policy, every torrent that passed its
// precondition during a single evaluation.
type Report struct {
	// Sizes holds the total size of every governed torrent, matched or
	// not, in evaluation order.
	Sizes []int64

	// Matched counts the governed torrents that qualified for deletion.
	Matched int
}

// Count returns the number of governed torrents.
func (r *Report) Count() int {
	return len(r.Sizes)
}

// TotalSize returns the cumulative size of all governed torrents.
func (r *Report) TotalSize() int64 {
	var total int64
	for _, size := range r.Sizes {
		total += size
	}
	return total
}

// Evaluation is the aggregate outcome of evaluating every (torrent, policy)
// pair of one tick. The delete slices carry torrent hashes; a hash may
// appear in both when routed by policies with different delete-data flags,
// which is tolerated because removal is idempotent per hash.
type Evaluation struct {
	DeleteWithData    []string
	DeleteWithoutData []string

	// Reports maps each policy's name-or-index to its accumulated
	// report. Policies that governed no torrent still get an empty
	// report, so gauges reset to zero.
	Reports map[string]*Report
}

// Evaluate resolves every torrent against every policy in configuration
// order at the given instant. It performs no external calls; outcomes are a
// pure function of its inputs.
func (s Set) Evaluate(torrents []torrent.Torrent, now time.Time) Evaluation {
	ev := Evaluation{Reports: make(map[string]*Report, len(s.policies))}
	for index, p := range s.policies {
		ev.Reports[p.NameOrIndex(index)] = &Report{}
	}

	for _, t := range torrents {
		for index, p := range s.policies {
			match := p.Evaluate(t, now)
			if !match.Applicable() {
				continue
			}

			report := ev.Reports[p.NameOrIndex(index)]
			report.Sizes = append(report.Sizes, t.TotalSize)

			if !match.IsMatch() {
				continue
			}
			report.Matched++
			log.Info("matched torrent", t, log.Fields{
				"policy":      p.NameOrIndex(index),
				"match":       match.String(),
				"delete_data": p.DeleteData,
			})

			if p.DeleteData {
				ev.DeleteWithData = append(ev.DeleteWithData, t.Hash)
			} else {
				ev.DeleteWithoutData = append(ev.DeleteWithoutData, t.Hash)
			}
		}
	}

	return ev
}
