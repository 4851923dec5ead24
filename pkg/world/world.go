// Package world applies the game rules to persisted state: discovery,
// expedition phases, action completion, player bootstrap and production.
package world

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"planetfall/pkg/config"
	"planetfall/pkg/store"
	"planetfall/pkg/types"
)

// Publisher receives events after the change behind them is committed.
type Publisher interface {
	Publish(ev types.Event)
}

type World struct {
	store *store.Store
	cfg   *config.Config
	info  *log.Logger
	errs  *log.Logger
	pub   Publisher

	// Now is the clock. Tests replace it.
	Now func() time.Time
}

// New wires a World. Nil loggers discard output and a nil publisher drops events.
func New(s *store.Store, cfg *config.Config, info, errs *log.Logger, pub Publisher) *World {
	if info == nil {
		info = log.New(io.Discard, "", 0)
	}
	if errs == nil {
		errs = log.New(io.Discard, "", 0)
	}
	return &World{
		store: s,
		cfg:   cfg,
		info:  info,
		errs:  errs,
		pub:   pub,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

func (w *World) Store() *store.Store { return w.store }

func (w *World) publish(playerID, kind string, data interface{}) {
	if w.pub == nil {
		return
	}
	w.pub.Publish(types.Event{Type: kind, PlayerID: playerID, At: w.Now(), Data: data})
}

// SeedCatalog upserts every configured resource and template and the shared
// landing planet. Safe to run on every boot.
func (w *World) SeedCatalog(ctx context.Context) error {
	cat := w.cfg.Catalog
	return w.store.InTx(ctx, func(q *store.Queries) error {
		if name := w.cfg.World.LandingPlanet; name != "" {
			_, err := q.InsertPlanet(ctx, types.Planet{
				ID:               scopedID("", "landing"),
				Name:             name,
				Description:      "The shared landing world.",
				IsStartingPlanet: true,
			})
			if err != nil {
				return err
			}
		}
		for _, r := range cat.Resources {
			if _, err := q.UpsertResource(ctx, r.Name, r.Description); err != nil {
				return err
			}
		}
		for _, rt := range cat.RobotTypes {
			_, err := q.UpsertRobotType(ctx, types.RobotType{
				Name: rt.Name, Description: rt.Description, Stats: rt.Stats, TravelSpeed: rt.TravelSpeed,
			})
			if err != nil {
				return err
			}
		}
		for _, at := range cat.AlienTypes {
			_, err := q.UpsertAlienType(ctx, types.AlienType{Name: at.Name, Description: at.Description, Stats: at.Stats})
			if err != nil {
				return err
			}
		}
		for _, bt := range cat.BuildingTypes {
			_, err := q.UpsertBuildingType(ctx, types.BuildingType{
				Name: bt.Name, Description: bt.Description, CraftingTimeSecond: bt.CraftingTime,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// --- ids ---

var (
	actionSpace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("planetfall/action"))
	playerSpace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("planetfall/player"))
)

// effectID is stable per (action, effect) so a retried completion hits the
// same rows instead of creating new ones.
func effectID(actionID, effect string) string {
	return uuid.NewSHA1(actionSpace, []byte(actionID+"/"+effect)).String()
}

func scopedID(player, thing string) string {
	return uuid.NewSHA1(playerSpace, []byte(player+"/"+thing)).String()
}

func precondition(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), types.ErrPrecondition)
}

func notFound(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), types.ErrNotFound)
}

// Message strips the taxonomy suffix from an error for display.
func Message(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{types.ErrNotFound, types.ErrPrecondition, types.ErrConflict} {
		if errors.Is(err, sentinel) {
			suffix := ": " + sentinel.Error()
			if len(msg) > len(suffix) && msg[len(msg)-len(suffix):] == suffix {
				return msg[:len(msg)-len(suffix)]
			}
		}
	}
	return msg
}

func secs(n int) time.Duration {
	return time.Duration(n) * time.Second
}
