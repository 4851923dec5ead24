package types

import "time"

// Event kinds pushed to a player's feed.
const (
	EventExpeditionPhase = "expedition.phase"
	EventBattleResolved  = "battle.resolved"
	EventActionCompleted = "action.completed"
	EventCellsDiscovered = "cells.discovered"
)

type Event struct {
	Type     string      `json:"type" msgpack:"type"`
	PlayerID string      `json:"player_id" msgpack:"player_id"`
	At       time.Time   `json:"at" msgpack:"at"`
	Data     interface{} `json:"data" msgpack:"data"`
}
