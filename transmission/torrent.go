package transmission

import (
	"time"

	"github.com/pkg/errors"

	"github.com/boinkor-net/gearbox-maintenance/torrent"
)

// rpcTorrent is the wire shape of one torrent in a torrent-get response.
// Scalar fields are pointers so that an instance omitting one is
// distinguishable from a zero value.
type rpcTorrent struct {
	ID           *int64       `json:"id"`
	HashString   *string      `json:"hashString"`
	Name         *string      `json:"name"`
	Error        *int64       `json:"error"`
	ErrorString  *string      `json:"errorString"`
	Status       *int64       `json:"status"`
	UploadRatio  *float64     `json:"uploadRatio"`
	UploadedEver *int64       `json:"uploadedEver"`
	DoneDate     *int64       `json:"doneDate"`
	Files        []rpcFile    `json:"files"`
	TotalSize    *int64       `json:"totalSize"`
	Trackers     []rpcTracker `json:"trackers"`
}

type rpcFile struct {
	Name string `json:"name"`
}

type rpcTracker struct {
	Announce string `json:"announce"`
}

func ensureInt(field *int64, name string) (int64, error) {
	if field == nil {
		return 0, errors.Errorf("torrent has no field %q", name)
	}
	return *field, nil
}

func ensureString(field *string, name string) (string, error) {
	if field == nil {
		return "", errors.Errorf("torrent has no field %q", name)
	}
	return *field, nil
}

// snapshot converts the wire shape into an immutable snapshot, requiring
// every requested field to be present.
func (rt rpcTorrent) snapshot() (t torrent.Torrent, err error) {
	if t.ID, err = ensureInt(rt.ID, "id"); err != nil {
		return t, err
	}
	if t.Hash, err = ensureString(rt.HashString, "hashString"); err != nil {
		return t, err
	}
	if t.Name, err = ensureString(rt.Name, "name"); err != nil {
		return t, err
	}

	rawError, err := ensureInt(rt.Error, "error")
	if err != nil {
		return t, err
	}
	if t.Error, err = torrent.NewErrorKind(rawError); err != nil {
		return t, errors.Wrapf(err, "torrent %s", t.Name)
	}
	if t.ErrorString, err = ensureString(rt.ErrorString, "errorString"); err != nil {
		return t, err
	}

	rawStatus, err := ensureInt(rt.Status, "status")
	if err != nil {
		return t, err
	}
	if t.Status, err = torrent.NewStatus(rawStatus); err != nil {
		return t, errors.Wrapf(err, "torrent %s", t.Name)
	}

	if rt.UploadRatio == nil {
		return t, errors.Errorf("torrent has no field %q", "uploadRatio")
	}
	t.UploadRatio = *rt.UploadRatio
	if t.UploadedEver, err = ensureInt(rt.UploadedEver, "uploadedEver"); err != nil {
		return t, err
	}

	// doneDate omitted means unknown; 0 is the instance's "never
	// completed" sentinel, kept distinct from the unknown case.
	if rt.DoneDate != nil {
		t.DoneDate = time.Unix(*rt.DoneDate, 0)
	}

	if rt.Files == nil {
		return t, errors.Errorf("torrent has no field %q", "files")
	}
	t.FileCount = len(rt.Files)
	if t.TotalSize, err = ensureInt(rt.TotalSize, "totalSize"); err != nil {
		return t, err
	}

	if rt.Trackers == nil {
		return t, errors.Errorf("torrent has no field %q", "trackers")
	}
	t.Trackers = make([]string, 0, len(rt.Trackers))
	for _, tracker := range rt.Trackers {
		t.Trackers = append(t.Trackers, tracker.Announce)
	}

	return t, nil
}
