// Package janitor drives the per-instance maintenance loop: on every poll
// tick it fetches the instance's torrents, evaluates them against the
// instance's deletion policies, and removes the matches. Each instance runs
// in its own task; a tick failing never takes the loop down, and one
// instance failing never affects another.
package janitor

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/boinkor-net/gearbox-maintenance/config"
	"github.com/boinkor-net/gearbox-maintenance/metrics"
	"github.com/boinkor-net/gearbox-maintenance/pkg/log"
	"github.com/boinkor-net/gearbox-maintenance/policy"
	"github.com/boinkor-net/gearbox-maintenance/torrent"
)

// Repository lists and removes torrents on one Transmission instance.
type Repository interface {
	// List retrieves a snapshot of all torrents on the instance.
	List(ctx context.Context) ([]torrent.Torrent, error)

	// Remove deletes the torrents with the given hashes, optionally
	// together with their downloaded data. Removal is idempotent per
	// hash.
	Remove(ctx context.Context, hashes []string, deleteData bool) error
}

// Poller owns the maintenance loop for one instance.
type Poller struct {
	instance   config.Instance
	repo       Repository
	policies   policy.Set
	metrics    *metrics.Metrics
	takeAction bool

	now func() time.Time
}

// NewPoller builds the poller for one instance. It re-validates every
// policy's condition: a condition with no threshold set is an unrecoverable
// configuration error and must prevent the instance from ever starting.
func NewPoller(instance config.Instance, repo Repository, m *metrics.Metrics, takeAction bool) (*Poller, error) {
	for index, p := range instance.Policies {
		if _, err := policy.NewCondition(p.MatchWhen); err != nil {
			return nil, errors.Wrapf(err, "instance %s policy %s", instance.URL, p.NameOrIndex(index))
		}
	}

	return &Poller{
		instance:   instance,
		repo:       repo,
		policies:   policy.NewSet(instance.Policies),
		metrics:    m,
		takeAction: takeAction,
		now:        time.Now,
	}, nil
}

// Run polls the instance forever. Ticks are strictly sequential: a tick that
// overruns the poll interval delays the next one rather than overlapping
// it. Per-tick failures are logged and counted but never end the loop, so
// Run returning at all violates its contract; the supervisor treats any
// return as fatal.
func (p *Poller) Run() error {
	log.Info("polling instance", p.instance)
	ticker := time.NewTicker(p.instance.PollInterval)
	defer ticker.Stop()

	for {
		if err := p.tick(context.Background()); err != nil {
			p.metrics.CountTickFailure(p.instance.URL)
			log.Warn("error polling", p.instance, log.Err(err))
		} else {
			log.Debug("polling succeeded", p.instance)
		}

		<-ticker.C
	}
}

// tick runs one fetch-evaluate-act cycle.
func (p *Poller) tick(ctx context.Context) error {
	start := p.now()
	defer func() {
		p.metrics.ObserveTickDuration(p.instance.URL, p.now().Sub(start))
	}()

	torrents, err := p.repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "could not retrieve list of torrents")
	}

	ev := p.policies.Evaluate(torrents, p.now())
	for name, report := range ev.Reports {
		for _, size := range report.Sizes {
			p.metrics.ObserveTorrentSize(p.instance.URL, name, size)
		}
		for i := 0; i < report.Matched; i++ {
			p.metrics.CountDeletion(p.instance.URL, name)
		}
		p.metrics.SetWatched(p.instance.URL, name, report.Count(), report.TotalSize())
	}

	return p.act(ctx, ev)
}

// act issues the removal calls for one evaluation, or only reports them in
// dry-run mode. A failed call aborts the remaining one; removals already
// issued are not rolled back.
func (p *Poller) act(ctx context.Context, ev policy.Evaluation) error {
	if !p.takeAction {
		if len(ev.DeleteWithData) > 0 || len(ev.DeleteWithoutData) > 0 {
			log.Info("dry run, not deleting", p.instance, log.Fields{
				"with_data":    len(ev.DeleteWithData),
				"without_data": len(ev.DeleteWithoutData),
			})
		}
		return nil
	}

	if len(ev.DeleteWithData) > 0 {
		log.Info("deleting torrents and their data", p.instance, log.Fields{
			"torrents_to_delete": len(ev.DeleteWithData),
		})
		if err := p.repo.Remove(ctx, ev.DeleteWithData, true); err != nil {
			return errors.Wrap(err, "deleting torrents with local data")
		}
	}

	if len(ev.DeleteWithoutData) > 0 {
		log.Info("deleting torrent metadata alone", p.instance, log.Fields{
			"torrents_to_delete": len(ev.DeleteWithoutData),
		})
		if err := p.repo.Remove(ctx, ev.DeleteWithoutData, false); err != nil {
			return errors.Wrap(err, "deleting torrent metadata")
		}
	}

	return nil
}
