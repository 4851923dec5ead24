package main

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"planetfall/pkg/config"
	"planetfall/pkg/feed"
	"planetfall/pkg/store"
	"planetfall/pkg/world"
)

var (
	// Infrastructure
	db       *sql.DB
	InfoLog  *log.Logger
	ErrorLog *log.Logger
	Config   *config.Config

	// Game
	worldStore *store.Store
	engine     *world.World
	hub        *feed.Hub
	bootTime   = time.Now()

	// Rate Limiting
	ipLimiters = make(map[string]*rate.Limiter)
	ipLock     sync.Mutex
)

// PlayerHeader carries the caller's identity on every client route.
const PlayerHeader = "X-Player-ID"
