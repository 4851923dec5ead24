package main

import (
	"net/http"
	"time"

	"planetfall/pkg/core"
	"planetfall/pkg/world"
)

// --- Player Handlers ---

func handleInit(w http.ResponseWriter, r *http.Request, player string) {
	msg, err := engine.InitPlayer(r.Context(), player)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func handleLand(w http.ResponseWriter, r *http.Request, player string) {
	planet, err := engine.Land(r.Context(), player)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": world.MsgLanded, "planet": planet})
}

func handlePlanets(w http.ResponseWriter, r *http.Request, player string) {
	planets, err := engine.Planets(r.Context(), player)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"planets": planets})
}

func handleLocations(w http.ResponseWriter, r *http.Request, player string) {
	locs, err := engine.Locations(r.Context(), player, r.PathValue("planetId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"locations": locs})
}

func handleRobots(w http.ResponseWriter, r *http.Request, player string) {
	robots, err := engine.IdleRobots(r.Context(), player, r.PathValue("planetId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"robots": robots})
}

func handleBuildings(w http.ResponseWriter, r *http.Request, player string) {
	buildings, err := engine.Buildings(r.Context(), player, r.PathValue("planetId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"buildings": buildings})
}

func handleResources(w http.ResponseWriter, r *http.Request, player string) {
	stock, err := engine.Stock(r.Context(), player)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"resources": stock})
}

// --- Action Handlers ---

func handleAction(w http.ResponseWriter, r *http.Request, player string) {
	var req world.ActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := engine.StartAction(r.Context(), player, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func handleActionComplete(w http.ResponseWriter, r *http.Request, player string) {
	var req struct {
		ActionID string `json:"actionId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ActionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Action ID is required"})
		return
	}
	msg, err := engine.ResolveAction(r.Context(), player, req.ActionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func handleActions(w http.ResponseWriter, r *http.Request, player string) {
	actions, err := engine.PendingActions(r.Context(), player)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"actions": actions})
}

// --- Expedition Handlers ---

func handleExploreStart(w http.ResponseWriter, r *http.Request, player string) {
	var req struct {
		RobotIDs []string `json:"robotIds"`
		TargetX  *int     `json:"targetX"`
		TargetY  *int     `json:"targetY"`
		PlanetID string   `json:"planetId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.RobotIDs) == 0 || req.TargetX == nil || req.TargetY == nil || req.PlanetID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required parameters"})
		return
	}
	out, err := engine.StartExpedition(r.Context(), player, req.PlanetID, req.RobotIDs, *req.TargetX, *req.TargetY)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		world.ExpeditionStarted
	}{"Exploration started successfully", out})
}

func handleExploreUpdate(w http.ResponseWriter, r *http.Request, player string) {
	n, err := engine.AdvanceExpeditions(r.Context(), player)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Groups updated successfully", "updatedGroups": n})
}

func handleExploreGroups(w http.ResponseWriter, r *http.Request, player string) {
	groups, err := engine.ListExpeditions(r.Context(), player, r.URL.Query().Get("planetId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

// --- Feed & Status ---

func handleFeed(w http.ResponseWriter, r *http.Request, player string) {
	hub.ServeWS(w, r, player)
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"world":   core.Hash([]byte(Config.World.Seed))[:16],
		"time":    engine.Now(),
		"uptime":  time.Since(bootTime).Round(time.Second).String(),
		"sweeper": Config.Sweeper.Enabled,
		"control": Config.Server.CommandControl,
	})
}

func newRouter() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/game/init", withPlayer(handleInit))
	mux.HandleFunc("POST /api/game/land", withPlayer(handleLand))
	mux.HandleFunc("GET /api/game/planets", withPlayer(handlePlanets))
	mux.HandleFunc("GET /api/game/planets/{planetId}/locations", withPlayer(handleLocations))
	mux.HandleFunc("GET /api/game/planets/{planetId}/robots", withPlayer(handleRobots))
	mux.HandleFunc("GET /api/game/planets/{planetId}/buildings", withPlayer(handleBuildings))
	mux.HandleFunc("GET /api/game/resources", withPlayer(handleResources))

	mux.HandleFunc("POST /api/game/action", withPlayer(handleAction))
	mux.HandleFunc("POST /api/game/action/complete", withPlayer(handleActionComplete))
	mux.HandleFunc("GET /api/game/actions", withPlayer(handleActions))

	mux.HandleFunc("POST /api/game/explore/start", withPlayer(handleExploreStart))
	mux.HandleFunc("POST /api/game/explore/update", withPlayer(handleExploreUpdate))
	mux.HandleFunc("GET /api/game/explore/groups", withPlayer(handleExploreGroups))

	mux.HandleFunc("GET /api/feed", withPlayer(handleFeed))
	mux.HandleFunc("GET /api/status", handleStatus)

	handler := middlewareSecurity(mux)
	return middlewareCORS(handler)
}
