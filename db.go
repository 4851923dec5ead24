package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"planetfall/pkg/store"
)

func initDB() {
	path := Config.Database.Path
	os.MkdirAll(filepath.Dir(path), 0755)

	var err error
	db, err = sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		panic(err)
	}
	// SQLite has one writer; a single connection keeps transactions serialised.
	db.SetMaxOpenConns(1)
	db.Exec("PRAGMA journal_mode=WAL;")

	worldStore = store.New(db)
	if err := worldStore.Migrate(context.Background()); err != nil {
		panic(err)
	}
}
