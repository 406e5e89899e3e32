package tracker

import (
	"github.com/julianstephens/habitquest/internal/exchange"
)

// Export snapshots the current user's data.
func (t *Tracker) Export() (exchange.Snapshot, error) {
	user, err := t.CurrentUser()
	if err != nil {
		return exchange.Snapshot{}, err
	}
	return exchange.Build(t.store, user, t.clock.Now())
}

// Import loads snap into the current user's account, then re-derives level and
// world from the imported XP and evaluates achievements.
func (t *Tracker) Import(snap exchange.Snapshot, merge bool) (exchange.Stats, Outcome, error) {
	owner, err := t.ownerID()
	if err != nil {
		return exchange.Stats{}, Outcome{}, err
	}
	before, err := t.progress.Get(owner)
	if err != nil {
		return exchange.Stats{}, Outcome{}, err
	}

	stats, err := exchange.Apply(t.store, owner, snap, merge, t.clock.Now())
	if err != nil {
		return stats, Outcome{}, err
	}
	if _, err := t.progress.Recompute(owner); err != nil {
		return stats, Outcome{}, err
	}

	out, err := t.settle(owner, before)
	return stats, out, err
}
