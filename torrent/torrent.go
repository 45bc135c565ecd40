// Package torrent models the per-tick snapshot of a torrent on a remote
// Transmission instance. Snapshots are plain values: they are fetched once
// per poll tick, never mutated, and discarded when the tick ends.
package torrent

import (
	"net/url"
	"time"

	"github.com/boinkor-net/gearbox-maintenance/pkg/log"
)

// Torrent is an immutable view of one torrent's attributes relevant to
// deletion policies.
//
// DoneDate is the instant the torrent finished downloading. The zero time
// means Transmission never reported one; the Unix epoch is Transmission's
// sentinel for "never completed" and must be kept distinct from both the
// zero time and a real completion instant.
type Torrent struct {
	ID          int64
	Hash        string
	Name        string
	DoneDate    time.Time
	Error       ErrorKind
	ErrorString string

	// UploadRatio as reported by the instance. Transmission reports a
	// negative value for torrents it has no ratio for; see Ratio.
	UploadRatio float64

	// UploadedEver is the total number of bytes uploaded, used to compute
	// a ratio when UploadRatio is unusable.
	UploadedEver int64

	Status    Status
	FileCount int
	TotalSize int64

	// Trackers holds the announce URLs of all trackers of the torrent.
	Trackers []string
}

// IsOK returns true if the torrent has no error status.
func (t Torrent) IsOK() bool {
	return t.Error == OK
}

// Ratio returns the upload ratio reported by the instance. When the reported
// ratio is negative (a known Transmission anomaly), it falls back to a ratio
// computed from bytes uploaded and total size; a zero-size torrent computes
// to 0.
func (t Torrent) Ratio() float64 {
	if t.UploadRatio >= 0 {
		return t.UploadRatio
	}
	if t.TotalSize == 0 {
		return 0
	}
	return float64(t.UploadedEver) / float64(t.TotalSize)
}

// TrackerHosts returns the hostnames of all tracker announce URLs of the
// torrent. Unparseable announce URLs are skipped.
func (t Torrent) TrackerHosts() []string {
	hosts := make([]string, 0, len(t.Trackers))
	for _, announce := range t.Trackers {
		u, err := url.Parse(announce)
		if err != nil || u.Hostname() == "" {
			continue
		}
		hosts = append(hosts, u.Hostname())
	}
	return hosts
}

// LogFields implements log.Fielder for a Torrent.
func (t Torrent) LogFields() log.Fields {
	return log.Fields{
		"torrent": t.Name,
		"hash":    t.Hash,
		"status":  t.Status.String(),
		"ratio":   t.Ratio(),
		"size":    t.TotalSize,
		"files":   t.FileCount,
	}
}
