package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"planetfall/pkg/types"
	"planetfall/pkg/world"
)

func setupLogging() {
	logDir := Config.Log.Dir
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		os.MkdirAll(logDir, 0755)
	}
	var infoOut, errOut io.Writer = os.Stdout, os.Stderr
	if fInfo, err := os.OpenFile(filepath.Join(logDir, "server.log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666); err == nil {
		infoOut = io.MultiWriter(fInfo, os.Stdout)
	}
	if fErr, err := os.OpenFile(filepath.Join(logDir, "error.log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666); err == nil {
		errOut = io.MultiWriter(fErr, os.Stderr)
	}
	InfoLog = log.New(infoOut, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLog = log.New(errOut, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}

func getLimiter(ip string) *rate.Limiter {
	ipLock.Lock()
	defer ipLock.Unlock()
	limiter, exists := ipLimiters[ip]
	if !exists {
		// Clients poll explore/update and actions every few seconds.
		limiter = rate.NewLimiter(rate.Limit(Config.Server.RatePerSecond), Config.Server.RateBurst)
		ipLimiters[ip] = limiter
	}
	return limiter
}

// middlewareCORS adds headers to allow browser clients
func middlewareCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, "+PlayerHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func middlewareSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !getLimiter(ip).Allow() {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Rate Limit"})
			return
		}

		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/game/") && !Config.Server.CommandControl {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Server is in maintenance mode (no player API)"})
			return
		}

		// Allow if Content-Type contains "application/json" (handles charset),
		// GET requests, empty types and text/plain from lazy fetch clients.
		contentType := r.Header.Get("Content-Type")
		if r.Method == http.MethodGet || contentType == "" ||
			strings.Contains(contentType, "application/json") || strings.Contains(contentType, "text/plain") {
			next.ServeHTTP(w, r)
			return
		}
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "Bad Type: " + contentType})
	})
}

// withPlayer rejects requests without a player id and passes it on.
func withPlayer(fn func(w http.ResponseWriter, r *http.Request, player string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player := strings.TrimSpace(r.Header.Get(PlayerHeader))
		if player == "" {
			// Browsers cannot set headers on a websocket handshake.
			player = strings.TrimSpace(r.URL.Query().Get("player"))
		}
		if player == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Missing " + PlayerHeader + " header"})
			return
		}
		fn(w, r, player)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrPrecondition):
		status = http.StatusBadRequest
	case errors.Is(err, types.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		ErrorLog.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, status, map[string]string{"error": world.Message(err)})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON body"})
		return false
	}
	return true
}
