package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"planetfall/pkg/config"
	"planetfall/pkg/core"
	"planetfall/pkg/game"
	"planetfall/pkg/store"
	"planetfall/pkg/world"
)

var cfg *config.Config
var st *store.Store
var engine *world.World

func main() {
	var err error
	cfg, err = config.Load(os.Getenv("PLANETFALL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// 1. Ensure Data Directory Exists
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0700); err != nil {
		fmt.Fprintf(os.Stderr, "data dir: %v\n", err)
		os.Exit(1)
	}

	// 2. Connect to DB
	ctx := context.Background()
	st, err = store.Open(ctx, "sqlite3", cfg.Database.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()
	os.Chmod(cfg.Database.Path, 0600)

	engine = world.New(st, cfg, nil, nil, nil)

	// 3. CLI Argument Mode (Non-Interactive)
	if len(os.Args) > 1 {
		if err := handleCLI(ctx, os.Args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// 4. Main Menu Loop (Interactive)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Println("\n========================================")
		fmt.Println("   PLANETFALL ADMINISTRATION CONSOLE")
		fmt.Println("========================================")
		fmt.Println("1. List Players")
		fmt.Println("2. Seed Catalog")
		fmt.Println("3. Prune Expedition History")
		fmt.Println("4. Battle Logs")
		fmt.Println("5. Delete Robot")
		fmt.Println("6. Exit")
		fmt.Println("========================================")
		fmt.Print("Select Option: ")

		if !scanner.Scan() {
			break
		}
		var err error
		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			err = listPlayers(ctx)
		case "2":
			err = seedCatalog(ctx)
		case "3":
			err = prune(ctx)
		case "4":
			err = battles(ctx, 20)
		case "5":
			fmt.Print("Robot ID: ")
			if scanner.Scan() {
				err = deleteRobot(ctx, strings.TrimSpace(scanner.Text()))
			}
		case "6":
			fmt.Println("Exiting.")
			return
		default:
			fmt.Println("Invalid option.")
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func handleCLI(ctx context.Context, args []string) error {
	switch args[0] {
	case "players":
		return listPlayers(ctx)
	case "seed":
		return seedCatalog(ctx)
	case "prune":
		return prune(ctx)
	case "battles":
		limit := 20
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("bad limit %q", args[1])
			}
			limit = n
		}
		return battles(ctx, limit)
	case "delete-robot":
		if len(args) < 2 {
			return fmt.Errorf("usage: delete-robot <robot_id>")
		}
		return deleteRobot(ctx, args[1])
	default:
		fmt.Println("Usage: admin [players | seed | prune | battles [limit] | delete-robot <id>]")
		return nil
	}
}

func listPlayers(ctx context.Context) error {
	players, err := st.ListPlayers(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\n%-38s %-20s %s\n", "ID", "NAME", "JOINED")
	for _, p := range players {
		planets, err := st.PlayerPlanets(ctx, p.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%-38s %-20s %s  (%d planets)\n", p.ID, p.Name, p.CreatedAt.Format("2006-01-02 15:04"), len(planets))
	}
	return nil
}

func seedCatalog(ctx context.Context) error {
	if err := engine.SeedCatalog(ctx); err != nil {
		return err
	}
	fmt.Println("Catalog seeded.")
	return nil
}

func prune(ctx context.Context) error {
	n, err := engine.PruneExpeditions(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Pruned %d completed expeditions older than %v.\n", n, cfg.World.GroupRetention)
	return nil
}

// battles prints archived battles and checks each blob against its digest.
func battles(ctx context.Context, limit int) error {
	logs, err := st.BattleLogs(ctx, limit)
	if err != nil {
		return err
	}
	for _, b := range logs {
		verdict := "ok"
		if core.Hash(b.Blob) != b.Digest {
			verdict = "DIGEST MISMATCH"
		}
		decoded, err := game.DecodeBattle(b.Blob)
		if err != nil {
			verdict = "UNREADABLE: " + err.Error()
		}
		fmt.Printf("%s  %s (%d,%d) %-18s rounds=%d  [%s]\n",
			b.CreatedAt.Format("2006-01-02 15:04:05"), b.PlanetID, b.X, b.Y, b.Outcome, b.Rounds, verdict)
		if err == nil && len(decoded.Rounds) > 0 {
			last := decoded.Rounds[len(decoded.Rounds)-1]
			fmt.Printf("    final: robot hp=%.1f sh=%.1f, aliens left=%d\n", last.AttackerHealth, last.AttackerShield, last.Remaining)
		}
	}
	if len(logs) == 0 {
		fmt.Println("No battles archived.")
	}
	return nil
}

func deleteRobot(ctx context.Context, id string) error {
	if err := st.DeleteRobot(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Robot %s deleted.\n", id)
	return nil
}
