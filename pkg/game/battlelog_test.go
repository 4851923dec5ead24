package game

import (
	"reflect"
	"testing"

	"planetfall/pkg/types"
)

func TestBattleLogArchive(t *testing.T) {
	alien := types.UnitStats{Health: 30, Shield: 5, ShieldRegen: 0.5, RangedDefense: 3, MeleeAttack: 8, MeleeDefense: 2}
	b := Resolve(explorerBot, alien, 2, 0)

	blob, digest, err := EncodeBattle(b)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(digest) != 64 {
		t.Errorf("Expected blake3 hex digest, got %q", digest)
	}

	got, err := DecodeBattle(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, b) {
		t.Errorf("Archived battle differs:\n got %+v\nwant %+v", got, b)
	}

	if _, err := DecodeBattle([]byte("not lz4")); err == nil {
		t.Errorf("Expected error on garbage blob")
	}
}
