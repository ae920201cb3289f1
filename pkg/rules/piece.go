package rules

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// PieceRef is a snapshot of a piece copied out of the oracle. It is never
// mutated after creation.
type PieceRef struct {
	Kind chess.PieceType
	Side chess.Color
}

var kindNames = map[chess.PieceType]string{
	chess.King:   "king",
	chess.Queen:  "queen",
	chess.Rook:   "rook",
	chess.Bishop: "bishop",
	chess.Knight: "knight",
	chess.Pawn:   "pawn",
}

// KindName returns the lowercase English name of a piece type.
func KindName(k chess.PieceType) string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return ""
}

// ParseKind accepts either the full piece name or its single letter.
func ParseKind(s string) (chess.PieceType, error) {
	s = strings.ToLower(s)
	for k, name := range kindNames {
		if s == name || s == k.String() {
			return k, nil
		}
	}
	return chess.NoPieceType, fmt.Errorf("unknown piece kind %q", s)
}

// SideName returns "white", "black" or "" for chess.NoColor.
func SideName(c chess.Color) string {
	switch c {
	case chess.White:
		return "white"
	case chess.Black:
		return "black"
	default:
		return ""
	}
}

func ParseSide(s string) (chess.Color, error) {
	switch strings.ToLower(s) {
	case "white", "w":
		return chess.White, nil
	case "black", "b":
		return chess.Black, nil
	default:
		return chess.NoColor, fmt.Errorf("unknown side %q", s)
	}
}

func pieceRef(p chess.Piece) PieceRef {
	return PieceRef{Kind: p.Type(), Side: p.Color()}
}

// Empty reports whether the ref describes no piece at all.
func (p PieceRef) Empty() bool {
	return p.Kind == chess.NoPieceType
}

func (p PieceRef) String() string {
	if p.Empty() {
		return "empty"
	}
	return SideName(p.Side) + " " + KindName(p.Kind)
}

type pieceJSON struct {
	Kind string `json:"kind"`
	Side string `json:"side"`
}

func (p PieceRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(pieceJSON{Kind: KindName(p.Kind), Side: SideName(p.Side)})
}

func (p *PieceRef) UnmarshalJSON(data []byte) error {
	var raw pieceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Kind == "" {
		*p = PieceRef{}
		return nil
	}
	kind, err := ParseKind(raw.Kind)
	if err != nil {
		return err
	}
	side, err := ParseSide(raw.Side)
	if err != nil {
		return err
	}
	*p = PieceRef{Kind: kind, Side: side}
	return nil
}
