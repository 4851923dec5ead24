package store

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"planetfall/pkg/types"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestStore opens an isolated in-memory database with the schema applied.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertResourceConverges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.UpsertResource(ctx, "Iron", "")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.UpsertResource(ctx, "Iron", "again")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != b.ID {
		t.Errorf("Expected one Iron row, got ids %s and %s", a.ID, b.ID)
	}
	if _, err := s.ResourceByName(ctx, "Unobtainium"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRobotTypeUpsertKeepsID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rt := types.RobotType{Name: "Basic Explorer Bot", TravelSpeed: 5, Stats: types.UnitStats{Health: 100}}
	first, err := s.UpsertRobotType(ctx, rt)
	if err != nil {
		t.Fatal(err)
	}
	rt.Stats.Health = 120
	second, err := s.UpsertRobotType(ctx, rt)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID || second.Stats.Health != 120 {
		t.Errorf("Expected refreshed stats under the same id, got %+v then %+v", first, second)
	}
}

func TestInsertLocationsWriteOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res, _ := s.UpsertResource(ctx, "Copper", "")
	first, err := s.InsertLocations(ctx, []types.Location{
		{PlanetID: "p1", X: 3, Y: 4, HasResourceMine: true, ResourceID: res.ID},
		{PlanetID: "p1", X: 4, Y: 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 {
		t.Fatalf("Expected 2 new cells, got %d", len(first))
	}

	// A second writer with different contents must not overwrite.
	second, err := s.InsertLocations(ctx, []types.Location{
		{PlanetID: "p1", X: 3, Y: 4, HasAliens: true, AlienQuantity: 4},
		{PlanetID: "p1", X: 5, Y: 4},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 1 || second[0].X != 5 {
		t.Fatalf("Expected only (5,4) to be written, got %+v", second)
	}

	loc, err := s.LocationAt(ctx, "p1", 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !loc.HasResourceMine || loc.ResourceName != "Copper" || loc.HasAliens {
		t.Errorf("Cell was overwritten: %+v", loc)
	}

	seen, err := s.DiscoveredIn(ctx, "p1", 2, 3, 4, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || !seen[[2]int{3, 4}] || seen[[2]int{5, 4}] {
		t.Errorf("Unexpected discovered set %v", seen)
	}
}

func TestTransitionGroupCAS(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g, err := s.InsertGroup(ctx, types.RobotGroup{
		PlayerID: "u1", PlanetID: "p1", StartTime: t0, EndTime: t0.Add(100 * time.Second),
		Status: types.GroupTraveling, RobotIDs: []string{"r1", "r2"},
	})
	if err != nil {
		t.Fatal(err)
	}

	ok, err := s.TransitionGroup(ctx, g.ID, types.GroupTraveling, types.GroupExploring)
	if err != nil || !ok {
		t.Fatalf("First transition should win: ok=%v err=%v", ok, err)
	}
	ok, err = s.TransitionGroup(ctx, g.ID, types.GroupTraveling, types.GroupExploring)
	if err != nil || ok {
		t.Fatalf("Stale transition should lose: ok=%v err=%v", ok, err)
	}

	got, err := s.GroupByID(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != types.GroupExploring || len(got.RobotIDs) != 2 || !got.EndTime.Equal(g.EndTime) {
		t.Errorf("Unexpected group %+v", got)
	}

	busy, err := s.BusyRobots(ctx, []string{"r1", "r3"})
	if err != nil {
		t.Fatal(err)
	}
	if !busy["r1"] || busy["r3"] {
		t.Errorf("Unexpected busy set %v", busy)
	}
}

func TestPruneGroupsKeepsRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old, _ := s.InsertGroup(ctx, types.RobotGroup{PlayerID: "u1", PlanetID: "p1",
		StartTime: t0, EndTime: t0.Add(time.Minute), Status: types.GroupCompleted, RobotIDs: []string{"r1"}})
	recent, _ := s.InsertGroup(ctx, types.RobotGroup{PlayerID: "u1", PlanetID: "p1",
		StartTime: t0, EndTime: t0.Add(5 * time.Hour), Status: types.GroupCompleted})

	n, err := s.PruneGroups(ctx, t0.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Expected 1 pruned group, got %d", n)
	}
	if _, err := s.GroupByID(ctx, old.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Old group should be gone, got %v", err)
	}
	if _, err := s.GroupByID(ctx, recent.ID); err != nil {
		t.Errorf("Recent group should survive, got %v", err)
	}
}

func TestSpendStockIsConditional(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddStock(ctx, "u1", "p1", "iridium", 150); err != nil {
		t.Fatal(err)
	}
	ok, err := s.SpendStock(ctx, "u1", "p1", "iridium", 200)
	if err != nil || ok {
		t.Fatalf("Overspend should be refused: ok=%v err=%v", ok, err)
	}
	ok, err = s.SpendStock(ctx, "u1", "p1", "iridium", 100)
	if err != nil || !ok {
		t.Fatalf("Spend should succeed: ok=%v err=%v", ok, err)
	}
	ok, _ = s.SpendStock(ctx, "u1", "p1", "iridium", 100)
	if ok {
		t.Error("Second spend of 100 from 50 should be refused")
	}
}

func TestCompleteActionOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.InsertAction(ctx, types.Action{PlayerID: "u1", Type: types.ActionBuildRobot,
		StartTime: t0, EndTime: t0.Add(30 * time.Second), Status: types.ActionInProgress})
	if err != nil {
		t.Fatal(err)
	}
	due, _ := s.DueActions(ctx, t0.Add(10*time.Second))
	if len(due) != 0 {
		t.Errorf("Action is not due yet, got %d", len(due))
	}
	due, _ = s.DueActions(ctx, t0.Add(30*time.Second))
	if len(due) != 1 {
		t.Errorf("Expected 1 due action, got %d", len(due))
	}

	if ok, _ := s.CompleteAction(ctx, a.ID); !ok {
		t.Error("First completion should win")
	}
	if ok, _ := s.CompleteAction(ctx, a.ID); ok {
		t.Error("Second completion should be a no-op")
	}
	if _, err := s.ActionForPlayer(ctx, "someone-else", a.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Foreign action should be ErrNotFound, got %v", err)
	}
}

func TestInTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.InTx(ctx, func(q *Queries) error {
		if _, err := q.InsertRobot(ctx, types.Robot{ID: "r1", PlayerID: "u1", PlanetID: "p1"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected fn error, got %v", err)
	}
	if _, err := s.RobotByID(ctx, "r1"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Robot should have been rolled back, got %v", err)
	}
}

func TestDeleteRobotDropsMemberships(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.InsertRobot(ctx, types.Robot{ID: "r1", PlayerID: "u1", PlanetID: "p1"})
	g, _ := s.InsertGroup(ctx, types.RobotGroup{PlayerID: "u1", PlanetID: "p1", StartTime: t0, EndTime: t0,
		Status: types.GroupTraveling, RobotIDs: []string{"r1"}})

	if err := s.DeleteRobot(ctx, "r1"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GroupByID(ctx, g.ID)
	if len(got.RobotIDs) != 0 {
		t.Errorf("Expected no members left, got %v", got.RobotIDs)
	}
	if err := s.DeleteRobot(ctx, "r1"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}
