package torrent

import "github.com/pkg/errors"

// ErrUnknownErrorKind is returned when NewErrorKind is given a value that
// does not correspond to a Transmission torrent error state.
var ErrUnknownErrorKind = errors.New("unknown torrent error kind")

// ErrorKind represents the error state of a torrent, as reported by the RPC
// "error" field.
type ErrorKind int

const (
	// OK means the torrent has no error.
	OK ErrorKind = iota

	// TrackerWarning means the latest tracker announce returned a warning.
	TrackerWarning

	// TrackerError means the latest tracker announce returned an error.
	TrackerError

	// LocalError means local trouble, such as a full disk or a
	// permissions problem.
	LocalError
)

var errorKindToString = map[ErrorKind]string{
	OK:             "ok",
	TrackerWarning: "tracker warning",
	TrackerError:   "tracker error",
	LocalError:     "local error",
}

// NewErrorKind returns the ErrorKind for a raw Transmission error value.
func NewErrorKind(raw int64) (ErrorKind, error) {
	k := ErrorKind(raw)
	if _, ok := errorKindToString[k]; !ok {
		return OK, errors.Wrapf(ErrUnknownErrorKind, "%d", raw)
	}
	return k, nil
}

// String implements Stringer for an ErrorKind.
func (k ErrorKind) String() string {
	if name, ok := errorKindToString[k]; ok {
		return name
	}

	panic("torrent: error kind has no associated name")
}
