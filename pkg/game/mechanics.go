package game

import "time"

// --- Logistics ---

func ManhattanDistance(x1, y1, x2, y2 int) int {
	return abs(x2-x1) + abs(y2-y1)
}

// GroupSpeed is the slowest member's seconds per grid point.
func GroupSpeed(speeds []int) int {
	slowest := 0
	for _, s := range speeds {
		if s > slowest {
			slowest = s
		}
	}
	return slowest
}

type ExpeditionPlan struct {
	Distance       int
	GroupSpeed     int
	TravelSeconds  int
	ExploreSeconds int
	TotalSeconds   int
	Start          time.Time
	Arrival        time.Time
	ExplorationEnd time.Time
	End            time.Time
}

// PlanExpedition computes the out-and-back schedule for a group leaving now.
func PlanExpedition(startX, startY, targetX, targetY int, speeds []int, explore time.Duration, now time.Time) ExpeditionPlan {
	p := ExpeditionPlan{
		Distance:       ManhattanDistance(startX, startY, targetX, targetY),
		GroupSpeed:     GroupSpeed(speeds),
		ExploreSeconds: int(explore / time.Second),
		Start:          now,
	}
	p.TravelSeconds = p.Distance * p.GroupSpeed
	p.TotalSeconds = 2*p.TravelSeconds + p.ExploreSeconds
	p.Arrival = now.Add(time.Duration(p.TravelSeconds) * time.Second)
	p.ExplorationEnd = p.Arrival.Add(explore)
	p.End = now.Add(time.Duration(p.TotalSeconds) * time.Second)
	return p
}

// TravelTime is the one-way trip of a single robot.
func TravelTime(startX, startY, targetX, targetY, speed int) time.Duration {
	return time.Duration(ManhattanDistance(startX, startY, targetX, targetY)*speed) * time.Second
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
