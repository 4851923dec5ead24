package game

import (
	"time"

	"planetfall/pkg/types"
)

// DefaultExploreDuration is the fixed exploration phase length.
const DefaultExploreDuration = 30 * time.Second

// Timeline holds the derived phase boundaries of one expedition.
type Timeline struct {
	Start          time.Time
	End            time.Time
	Travel         time.Duration
	Arrival        time.Time
	ExplorationEnd time.Time
}

// NewTimeline splits [start, end] into travel, exploration and return.
// Travel is floor((end-start-explore)/2) at millisecond resolution.
func NewTimeline(start, end time.Time, explore time.Duration) Timeline {
	totalMs := end.Sub(start).Milliseconds()
	travel := time.Duration(floorDiv(totalMs-explore.Milliseconds(), 2)) * time.Millisecond
	arrival := start.Add(travel)
	return Timeline{
		Start:          start,
		End:            end,
		Travel:         travel,
		Arrival:        arrival,
		ExplorationEnd: arrival.Add(explore),
	}
}

// StatusAt is the phase the wall clock says the expedition is in.
func (t Timeline) StatusAt(now time.Time) types.GroupStatus {
	switch {
	case !now.Before(t.End):
		return types.GroupCompleted
	case !now.Before(t.ExplorationEnd):
		return types.GroupReturning
	case !now.Before(t.Arrival):
		return types.GroupExploring
	}
	return types.GroupTraveling
}

// NextStatus applies only forward transitions: a tick that computes an
// earlier phase than the stored one leaves the stored status in place.
func NextStatus(stored types.GroupStatus, now time.Time, t Timeline) types.GroupStatus {
	target := t.StatusAt(now)
	if target.Rank() <= stored.Rank() {
		return stored
	}
	return target
}

// NeedsDiscovery reports whether moving stored -> next is the first
// observation of arrival. That includes a late tick jumping from traveling
// straight to returning or completed, so a missed exploring phase still
// reveals the target once.
func NeedsDiscovery(stored, next types.GroupStatus) bool {
	return stored == types.GroupTraveling && next.Rank() > types.GroupTraveling.Rank()
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
