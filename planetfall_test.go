package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
	_ "modernc.org/sqlite"

	"planetfall/pkg/config"
	"planetfall/pkg/feed"
	"planetfall/pkg/store"
	"planetfall/pkg/world"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testNow is the clock every handler sees during a test.
var testNow time.Time

// setupTestEnv wires the server globals over an in-memory database.
func setupTestEnv(t *testing.T) {
	t.Helper()
	var err error
	Config, err = config.Default()
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}
	InfoLog = log.New(io.Discard, "", 0)
	ErrorLog = log.New(io.Discard, "", 0)

	worldStore, err = store.Open(context.Background(), "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db = worldStore.DB()
	t.Cleanup(func() { worldStore.Close() })

	testNow = testStart
	hub = feed.NewHub(ErrorLog)
	engine = world.New(worldStore, Config, InfoLog, ErrorLog, hub)
	engine.Now = func() time.Time { return testNow }
	if err := engine.SeedCatalog(context.Background()); err != nil {
		t.Fatalf("Failed to seed catalog: %v", err)
	}

	ipLock.Lock()
	ipLimiters = make(map[string]*rate.Limiter)
	ipLock.Unlock()
}

// Helper to make JSON requests as a player through the full middleware chain
func executeRequest(player, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body []byte
	if payload != nil {
		body, _ = json.Marshal(payload)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if player != "" {
		req.Header.Set(PlayerHeader, player)
	}
	rr := httptest.NewRecorder()
	newRouter().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("Bad response body %q: %v", rr.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

// homeSetup initialises a player and returns the home planet and starter robot.
func homeSetup(t *testing.T, player string) (planetID, robotID string) {
	t.Helper()
	expectStatus(t, executeRequest(player, "POST", "/api/game/init", nil), http.StatusOK)

	var planets struct {
		Planets []struct {
			ID string `json:"id"`
		} `json:"planets"`
	}
	rr := executeRequest(player, "GET", "/api/game/planets", nil)
	expectStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &planets)
	if len(planets.Planets) != 1 {
		t.Fatalf("Expected 1 planet after init, got %d", len(planets.Planets))
	}
	planetID = planets.Planets[0].ID

	var robots struct {
		Robots []struct {
			ID string `json:"id"`
		} `json:"robots"`
	}
	rr = executeRequest(player, "GET", "/api/game/planets/"+planetID+"/robots", nil)
	expectStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &robots)
	if len(robots.Robots) != 1 {
		t.Fatalf("Expected starter robot, got %d robots", len(robots.Robots))
	}
	return planetID, robots.Robots[0].ID
}

func TestInitAndLand(t *testing.T) {
	setupTestEnv(t)

	var msg map[string]string
	rr := executeRequest("cmdr", "POST", "/api/game/init", nil)
	expectStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &msg)
	if msg["message"] != world.MsgPlayerInitialized {
		t.Errorf("Unexpected init message: %q", msg["message"])
	}

	rr = executeRequest("cmdr", "POST", "/api/game/init", nil)
	expectStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &msg)
	if msg["message"] != world.MsgPlayerAlreadyExists {
		t.Errorf("Second init should be a no-op, got %q", msg["message"])
	}

	// A player with a home world has already landed.
	expectStatus(t, executeRequest("cmdr", "POST", "/api/game/land", nil), http.StatusBadRequest)

	rr = executeRequest("drifter", "POST", "/api/game/land", nil)
	expectStatus(t, rr, http.StatusOK)
	var landed struct {
		Message string `json:"message"`
		Planet  struct {
			Name string `json:"name"`
		} `json:"planet"`
	}
	decodeBody(t, rr, &landed)
	if landed.Planet.Name != Config.World.LandingPlanet {
		t.Errorf("Expected landing on %q, got %q", Config.World.LandingPlanet, landed.Planet.Name)
	}
	if landed.Message != world.MsgLanded {
		t.Errorf("Unexpected land message: %q", landed.Message)
	}
	expectStatus(t, executeRequest("drifter", "POST", "/api/game/land", nil), http.StatusBadRequest)
}

func TestMissingPlayerHeader(t *testing.T) {
	setupTestEnv(t)

	rr := executeRequest("", "GET", "/api/game/planets", nil)
	expectStatus(t, rr, http.StatusUnauthorized)
}

func TestForeignPlanetIsNotFound(t *testing.T) {
	setupTestEnv(t)
	planet, _ := homeSetup(t, "alice")

	rr := executeRequest("bob", "GET", "/api/game/planets/"+planet+"/locations", nil)
	expectStatus(t, rr, http.StatusNotFound)
}

func TestExpeditionFlow(t *testing.T) {
	setupTestEnv(t)
	planet, robot := homeSetup(t, "cmdr")

	rr := executeRequest("cmdr", "POST", "/api/game/explore/start", map[string]interface{}{
		"robotIds": []string{robot},
		"targetX":  3,
		"targetY":  0,
		"planetId": planet,
	})
	expectStatus(t, rr, http.StatusOK)
	var started struct {
		Message                string `json:"message"`
		GroupID                string `json:"groupId"`
		TravelTimeSeconds      int    `json:"travelTimeSeconds"`
		ExplorationTimeSeconds int    `json:"explorationTimeSeconds"`
		TotalTimeSeconds       int    `json:"totalTimeSeconds"`
	}
	decodeBody(t, rr, &started)
	if started.GroupID == "" {
		t.Fatal("Expected a group id")
	}
	// 3 cells at 5s each, 30s exploring, and the same way back.
	if started.TravelTimeSeconds != 15 || started.ExplorationTimeSeconds != 30 || started.TotalTimeSeconds != 60 {
		t.Errorf("Unexpected timings: %+v", started)
	}

	// The robot is busy while the group is out.
	rr = executeRequest("cmdr", "POST", "/api/game/explore/start", map[string]interface{}{
		"robotIds": []string{robot}, "targetX": 1, "targetY": 1, "planetId": planet,
	})
	expectStatus(t, rr, http.StatusBadRequest)

	testNow = testStart.Add(61 * time.Second)
	rr = executeRequest("cmdr", "POST", "/api/game/explore/update", nil)
	expectStatus(t, rr, http.StatusOK)
	var updated struct {
		UpdatedGroups int `json:"updatedGroups"`
	}
	decodeBody(t, rr, &updated)
	if updated.UpdatedGroups != 1 {
		t.Errorf("Expected 1 updated group, got %d", updated.UpdatedGroups)
	}

	var locs struct {
		Locations []struct {
			X int `json:"x_coord"`
			Y int `json:"y_coord"`
		} `json:"locations"`
	}
	rr = executeRequest("cmdr", "GET", "/api/game/planets/"+planet+"/locations", nil)
	expectStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &locs)
	found := false
	for _, l := range locs.Locations {
		if l.X == 3 && l.Y == 0 {
			found = true
		}
	}
	if !found {
		t.Error("Target cell was not discovered")
	}

	var groups struct {
		Groups []struct {
			Status string `json:"status"`
		} `json:"groups"`
	}
	rr = executeRequest("cmdr", "GET", "/api/game/explore/groups?planetId="+planet, nil)
	expectStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &groups)
	if len(groups.Groups) != 1 || groups.Groups[0].Status != "completed" {
		t.Errorf("Expected one completed group, got %+v", groups.Groups)
	}
}

func TestExploreStartValidation(t *testing.T) {
	setupTestEnv(t)
	planet, _ := homeSetup(t, "cmdr")

	rr := executeRequest("cmdr", "POST", "/api/game/explore/start", map[string]interface{}{
		"robotIds": []string{}, "targetX": 1, "targetY": 1, "planetId": planet,
	})
	expectStatus(t, rr, http.StatusBadRequest)

	rr = executeRequest("cmdr", "POST", "/api/game/explore/start", map[string]interface{}{
		"robotIds": []string{"no-such-robot"}, "targetX": 1, "targetY": 1, "planetId": planet,
	})
	expectStatus(t, rr, http.StatusNotFound)
}

func TestBuildRobotActionFlow(t *testing.T) {
	setupTestEnv(t)
	planet, _ := homeSetup(t, "cmdr")

	rr := executeRequest("cmdr", "POST", "/api/game/action", map[string]interface{}{
		"actionType":      "build_robot",
		"currentPlanetId": planet,
	})
	expectStatus(t, rr, http.StatusOK)
	var started world.ActionStarted
	decodeBody(t, rr, &started)
	if started.ActionID == "" || started.BuildTimeSeconds != 30 {
		t.Fatalf("Unexpected start response: %+v", started)
	}

	complete := map[string]string{"actionId": started.ActionID}
	expectStatus(t, executeRequest("cmdr", "POST", "/api/game/action/complete", complete), http.StatusBadRequest)

	testNow = testStart.Add(30 * time.Second)
	var msg map[string]string
	rr = executeRequest("cmdr", "POST", "/api/game/action/complete", complete)
	expectStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &msg)
	if msg["message"] != world.MsgActionCompleted {
		t.Errorf("Unexpected message: %q", msg["message"])
	}

	rr = executeRequest("cmdr", "POST", "/api/game/action/complete", complete)
	expectStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &msg)
	if msg["message"] != world.MsgActionAlreadyCompleted {
		t.Errorf("Second completion should be a no-op, got %q", msg["message"])
	}

	var robots struct {
		Robots []json.RawMessage `json:"robots"`
	}
	rr = executeRequest("cmdr", "GET", "/api/game/planets/"+planet+"/robots", nil)
	decodeBody(t, rr, &robots)
	if len(robots.Robots) != 2 {
		t.Errorf("Expected 2 robots after build, got %d", len(robots.Robots))
	}

	expectStatus(t, executeRequest("other", "POST", "/api/game/action/complete", complete), http.StatusNotFound)
	expectStatus(t, executeRequest("cmdr", "POST", "/api/game/action/complete", map[string]string{}), http.StatusBadRequest)
}

func TestSweepResolvesDueActions(t *testing.T) {
	setupTestEnv(t)
	planet, _ := homeSetup(t, "cmdr")

	rr := executeRequest("cmdr", "POST", "/api/game/action", map[string]interface{}{
		"actionType": "build_robot", "currentPlanetId": planet,
	})
	expectStatus(t, rr, http.StatusOK)

	testNow = testStart.Add(time.Minute)
	tickWorld(context.Background())

	var actions struct {
		Actions []json.RawMessage `json:"actions"`
	}
	rr = executeRequest("cmdr", "GET", "/api/game/actions", nil)
	expectStatus(t, rr, http.StatusOK)
	decodeBody(t, rr, &actions)
	if len(actions.Actions) != 0 {
		t.Errorf("Expected no pending actions after sweep, got %d", len(actions.Actions))
	}
}

func TestRateLimit(t *testing.T) {
	setupTestEnv(t)

	limited := false
	for i := 0; i < Config.Server.RateBurst+5; i++ {
		rr := executeRequest("", "GET", "/api/status", nil)
		if rr.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Error("Expected the limiter to reject a burst past its size")
	}
}

func TestCommandControl(t *testing.T) {
	setupTestEnv(t)
	Config.Server.CommandControl = false

	expectStatus(t, executeRequest("cmdr", "POST", "/api/game/init", nil), http.StatusServiceUnavailable)
	expectStatus(t, executeRequest("", "GET", "/api/status", nil), http.StatusOK)
}

func TestCORSPreflight(t *testing.T) {
	setupTestEnv(t)

	rr := executeRequest("", "OPTIONS", "/api/game/action", nil)
	expectStatus(t, rr, http.StatusOK)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin, got %q", got)
	}
}

func TestUnsupportedContentType(t *testing.T) {
	setupTestEnv(t)

	req := httptest.NewRequest("POST", "/api/game/init", bytes.NewBufferString("x=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(PlayerHeader, "cmdr")
	rr := httptest.NewRecorder()
	newRouter().ServeHTTP(rr, req)
	expectStatus(t, rr, http.StatusUnsupportedMediaType)
}
