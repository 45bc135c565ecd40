package torrent

import "github.com/pkg/errors"

// ErrUnknownStatus is returned when NewStatus is given a value that does not
// correspond to a Transmission torrent status.
var ErrUnknownStatus = errors.New("unknown torrent status")

// Status represents the lifecycle state of a torrent on a Transmission
// instance, as reported by the RPC "status" field.
type Status int

const (
	// Stopped is a torrent that is not active.
	Stopped Status = iota

	// QueuedToCheckFiles is a torrent waiting for a local data check.
	QueuedToCheckFiles

	// CheckingFiles is a torrent whose local data is being checked.
	CheckingFiles

	// QueuedToDownload is a torrent waiting to download.
	QueuedToDownload

	// Downloading is a torrent that is actively downloading.
	Downloading

	// QueuedToSeed is a torrent waiting to seed.
	QueuedToSeed

	// Seeding is a torrent that is uploading to peers. Only seeding
	// torrents are ever eligible for deletion.
	Seeding
)

var statusToString = map[Status]string{
	Stopped:            "stopped",
	QueuedToCheckFiles: "queued to check files",
	CheckingFiles:      "checking files",
	QueuedToDownload:   "queued to download",
	Downloading:        "downloading",
	QueuedToSeed:       "queued to seed",
	Seeding:            "seeding",
}

// NewStatus returns the Status for a raw Transmission status value.
func NewStatus(raw int64) (Status, error) {
	s := Status(raw)
	if _, ok := statusToString[s]; !ok {
		return Stopped, errors.Wrapf(ErrUnknownStatus, "%d", raw)
	}
	return s, nil
}

// String implements Stringer for a Status.
func (s Status) String() string {
	if name, ok := statusToString[s]; ok {
		return name
	}

	panic("torrent: status has no associated name")
}
