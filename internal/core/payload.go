package core

import "fmt"

// Payload flattens an event's variant fields into a canonical-JSON-safe map.
// The map is what gets hashed into the event id and what the store persists;
// the identity, authorship and kind columns live outside it.
//
// Coordinates encode as {"x":…, "y":…}; colors as their String() form;
// replacement entities as {"name":…} plus owner for pieces.
func Payload(ev Event) map[string]any {
	p := map[string]any{}
	switch ev.Kind {
	case KindMove:
		p["piece"] = ev.Piece
		p["from"] = coordPayload(ev.From)
		p["to"] = coordPayload(ev.To)
	case KindCapture:
		p["attacker"] = ev.Piece
		p["target"] = ev.Target
		p["from"] = coordPayload(ev.From)
		p["to"] = coordPayload(ev.To)
	case KindDestroy:
		p["target"] = ev.Target
		p["at"] = coordPayload(ev.At)
		p["reason"] = ev.Reason
	case KindTransform:
		p["old"] = ev.Piece
		p["at"] = coordPayload(ev.At)
		p["new"] = map[string]any{
			"name":  ev.NewPiece.Name(),
			"owner": ev.NewPiece.Owner().String(),
		}
	case KindSwap:
		p["a"] = ev.Piece
		p["b"] = ev.Target
		p["pos_a"] = coordPayload(ev.From)
		p["pos_b"] = coordPayload(ev.To)
	case KindTileChanged:
		p["at"] = coordPayload(ev.At)
		p["tile"] = map[string]any{"name": ev.NewTile.Name()}
	case KindTurnStart, KindTurnEnd:
		p["player"] = ev.Player.String()
		p["turn"] = ev.Turn
	case KindTurnAdvanced:
		p["next"] = ev.Player.String()
		p["turn"] = ev.Turn
	case KindTimeExpired:
		p["player"] = ev.Player.String()
	case KindGameOver:
		p["loser"] = ev.Player.String()
	}
	return p
}

// DecodeEvent rebuilds an event's variant fields from a persisted payload.
// The factory resolves replacement entities for Transform and TileChanged;
// identity and authorship columns are restored by the caller.
//
// Payload maps must carry ints (not float64) for numeric values — the store
// decodes with json.Number for exactly this reason.
func DecodeEvent(kind Kind, payload map[string]any, factory EntityFactory) (Event, error) {
	ev := Event{Kind: kind}
	var err error
	switch kind {
	case KindMove:
		ev.Piece, err = payloadString(payload, "piece")
		if err == nil {
			ev.From, err = payloadCoord(payload, "from")
		}
		if err == nil {
			ev.To, err = payloadCoord(payload, "to")
		}
	case KindCapture:
		ev.Piece, err = payloadString(payload, "attacker")
		if err == nil {
			ev.Target, err = payloadString(payload, "target")
		}
		if err == nil {
			ev.From, err = payloadCoord(payload, "from")
		}
		if err == nil {
			ev.To, err = payloadCoord(payload, "to")
		}
	case KindDestroy:
		ev.Target, err = payloadString(payload, "target")
		if err == nil {
			ev.At, err = payloadCoord(payload, "at")
		}
		if err == nil {
			ev.Reason, err = payloadString(payload, "reason")
		}
	case KindTransform:
		ev.Piece, err = payloadString(payload, "old")
		if err == nil {
			ev.At, err = payloadCoord(payload, "at")
		}
		if err == nil {
			ev.NewPiece, err = payloadPiece(payload, "new", ev.At, factory)
		}
	case KindSwap:
		ev.Piece, err = payloadString(payload, "a")
		if err == nil {
			ev.Target, err = payloadString(payload, "b")
		}
		if err == nil {
			ev.From, err = payloadCoord(payload, "pos_a")
		}
		if err == nil {
			ev.To, err = payloadCoord(payload, "pos_b")
		}
	case KindTileChanged:
		ev.At, err = payloadCoord(payload, "at")
		if err == nil {
			ev.NewTile, err = payloadTile(payload, "tile", ev.At, factory)
		}
	case KindTurnStart, KindTurnEnd:
		ev.Player, err = payloadColor(payload, "player")
		if err == nil {
			ev.Turn, err = payloadInt(payload, "turn")
		}
		ev.Actor = ev.Player
	case KindTurnAdvanced:
		ev.Player, err = payloadColor(payload, "next")
		if err == nil {
			ev.Turn, err = payloadInt(payload, "turn")
		}
		ev.Actor = ev.Player
	case KindTimeExpired:
		ev.Player, err = payloadColor(payload, "player")
		ev.Actor = ev.Player
	case KindGameOver:
		ev.Player, err = payloadColor(payload, "loser")
	default:
		return Event{}, fmt.Errorf("decode event: unknown kind %v", kind)
	}
	if err != nil {
		return Event{}, fmt.Errorf("decode %s event: %w", kind, err)
	}
	return ev, nil
}

func coordPayload(c Coord) map[string]any {
	return map[string]any{"x": c.X, "y": c.Y}
}

func payloadString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, v)
	}
	return s, nil
}

func payloadInt(m map[string]any, key string) (int, error) {
	v, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("field %q: expected int, got %T", key, v)
	}
}

func payloadCoord(m map[string]any, key string) (Coord, error) {
	v, ok := m[key]
	if !ok {
		return Coord{}, fmt.Errorf("missing field %q", key)
	}
	cm, ok := v.(map[string]any)
	if !ok {
		return Coord{}, fmt.Errorf("field %q: expected object, got %T", key, v)
	}
	x, err := payloadInt(cm, "x")
	if err != nil {
		return Coord{}, fmt.Errorf("field %q: %w", key, err)
	}
	y, err := payloadInt(cm, "y")
	if err != nil {
		return Coord{}, fmt.Errorf("field %q: %w", key, err)
	}
	return Coord{X: x, Y: y}, nil
}

func payloadColor(m map[string]any, key string) (Color, error) {
	s, err := payloadString(m, key)
	if err != nil {
		return NoColor, err
	}
	return ParseColor(s)
}

func payloadPiece(m map[string]any, key string, at Coord, factory EntityFactory) (Piece, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("missing field %q", key)
	}
	pm, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field %q: expected object, got %T", key, v)
	}
	name, err := payloadString(pm, "name")
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	owner, err := payloadColor(pm, "owner")
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return factory.NewPiece(name, owner, at)
}

func payloadTile(m map[string]any, key string, at Coord, factory EntityFactory) (Tile, error) {
	v, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("missing field %q", key)
	}
	tm, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field %q: expected object, got %T", key, v)
	}
	name, err := payloadString(tm, "name")
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return factory.NewTile(name, at)
}
