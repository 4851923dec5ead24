package game

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"planetfall/pkg/core"
)

// Battle log wire layout (protobuf encoding, no generated code):
//
//	Battle: 1 outcome string, 2 remaining varint, 3 attacker_health fixed64,
//	        4 attacker_shield fixed64, 5 rounds repeated bytes(Round)
//	Round:  1 n, 2..7 doubles in Round field order, 8 remaining, 9 kill
const (
	fBattleOutcome protowire.Number = 1
	fBattleRemain  protowire.Number = 2
	fBattleHealth  protowire.Number = 3
	fBattleShield  protowire.Number = 4
	fBattleRound   protowire.Number = 5

	fRoundN         protowire.Number = 1
	fRoundAtkDmg    protowire.Number = 2
	fRoundDefDmg    protowire.Number = 3
	fRoundAtkHealth protowire.Number = 4
	fRoundAtkShield protowire.Number = 5
	fRoundDefHealth protowire.Number = 6
	fRoundDefShield protowire.Number = 7
	fRoundRemain    protowire.Number = 8
	fRoundKill      protowire.Number = 9
)

var errBadBattleLog = errors.New("malformed battle log")

// EncodeBattle serialises and compresses a battle. The digest is the blake3
// hash of the returned blob.
func EncodeBattle(b Battle) (blob []byte, digest string, err error) {
	var raw []byte
	raw = protowire.AppendTag(raw, fBattleOutcome, protowire.BytesType)
	raw = protowire.AppendString(raw, string(b.Outcome))
	raw = protowire.AppendTag(raw, fBattleRemain, protowire.VarintType)
	raw = protowire.AppendVarint(raw, uint64(b.Remaining))
	raw = appendDouble(raw, fBattleHealth, b.AttackerHealth)
	raw = appendDouble(raw, fBattleShield, b.AttackerShield)
	for _, r := range b.Rounds {
		raw = protowire.AppendTag(raw, fBattleRound, protowire.BytesType)
		raw = protowire.AppendBytes(raw, encodeRound(r))
	}

	blob, err = core.Compress(raw)
	if err != nil {
		return nil, "", err
	}
	return blob, core.Hash(blob), nil
}

// DecodeBattle reverses EncodeBattle.
func DecodeBattle(blob []byte) (Battle, error) {
	raw, err := core.Decompress(blob)
	if err != nil {
		return Battle{}, err
	}
	var b Battle
	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return Battle{}, fmt.Errorf("%w: %v", errBadBattleLog, protowire.ParseError(n))
		}
		raw = raw[n:]
		switch {
		case num == fBattleOutcome && typ == protowire.BytesType:
			s, m := protowire.ConsumeString(raw)
			if m < 0 {
				return Battle{}, errBadBattleLog
			}
			b.Outcome = Outcome(s)
			n = m
		case num == fBattleRemain && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(raw)
			if m < 0 {
				return Battle{}, errBadBattleLog
			}
			b.Remaining = int(v)
			n = m
		case num == fBattleHealth && typ == protowire.Fixed64Type:
			b.AttackerHealth, n = consumeDouble(raw)
		case num == fBattleShield && typ == protowire.Fixed64Type:
			b.AttackerShield, n = consumeDouble(raw)
		case num == fBattleRound && typ == protowire.BytesType:
			msg, m := protowire.ConsumeBytes(raw)
			if m < 0 {
				return Battle{}, errBadBattleLog
			}
			r, err := decodeRound(msg)
			if err != nil {
				return Battle{}, err
			}
			b.Rounds = append(b.Rounds, r)
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, raw)
		}
		if n < 0 {
			return Battle{}, errBadBattleLog
		}
		raw = raw[n:]
	}
	return b, nil
}

func encodeRound(r Round) []byte {
	var buf []byte
	buf = protowire.AppendTag(buf, fRoundN, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(r.N))
	buf = appendDouble(buf, fRoundAtkDmg, r.AttackerDamage)
	buf = appendDouble(buf, fRoundDefDmg, r.DefenderDamage)
	buf = appendDouble(buf, fRoundAtkHealth, r.AttackerHealth)
	buf = appendDouble(buf, fRoundAtkShield, r.AttackerShield)
	buf = appendDouble(buf, fRoundDefHealth, r.DefenderHealth)
	buf = appendDouble(buf, fRoundDefShield, r.DefenderShield)
	buf = protowire.AppendTag(buf, fRoundRemain, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(r.Remaining))
	buf = protowire.AppendTag(buf, fRoundKill, protowire.VarintType)
	buf = protowire.AppendVarint(buf, protowire.EncodeBool(r.Kill))
	return buf
}

func decodeRound(buf []byte) (Round, error) {
	var r Round
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return Round{}, errBadBattleLog
		}
		buf = buf[n:]
		if typ == protowire.Fixed64Type {
			var v float64
			v, n = consumeDouble(buf)
			switch num {
			case fRoundAtkDmg:
				r.AttackerDamage = v
			case fRoundDefDmg:
				r.DefenderDamage = v
			case fRoundAtkHealth:
				r.AttackerHealth = v
			case fRoundAtkShield:
				r.AttackerShield = v
			case fRoundDefHealth:
				r.DefenderHealth = v
			case fRoundDefShield:
				r.DefenderShield = v
			}
		} else if typ == protowire.VarintType {
			var v uint64
			v, n = protowire.ConsumeVarint(buf)
			switch num {
			case fRoundN:
				r.N = int(v)
			case fRoundRemain:
				r.Remaining = int(v)
			case fRoundKill:
				r.Kill = protowire.DecodeBool(v)
			}
		} else {
			n = protowire.ConsumeFieldValue(num, typ, buf)
		}
		if n < 0 {
			return Round{}, errBadBattleLog
		}
		buf = buf[n:]
	}
	return r, nil
}

func appendDouble(buf []byte, num protowire.Number, v float64) []byte {
	buf = protowire.AppendTag(buf, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(buf, math.Float64bits(v))
}

func consumeDouble(buf []byte) (float64, int) {
	v, n := protowire.ConsumeFixed64(buf)
	return math.Float64frombits(v), n
}
