package battle

import (
	"fmt"

	"github.com/qnkhuat/battlechess/pkg/rules"
)

type Attacker struct {
	Piece rules.PieceRef `json:"piece"`
	From  string         `json:"from"`
}

type Defender struct {
	Piece rules.PieceRef `json:"piece"`
	At    string         `json:"at"`
}

// Record is one capture awaiting or undergoing presentation. At most one
// record is Active at any time.
type Record struct {
	ID       uint64           `json:"id"`
	Attacker Attacker         `json:"attacker"`
	Defender Defender         `json:"defender"`
	Move     rules.MoveResult `json:"move"`
	Active   bool             `json:"active"`
}

func (r Record) String() string {
	return fmt.Sprintf("#%d %s %s x %s %s", r.ID, r.Attacker.Piece, r.Attacker.From, r.Defender.Piece, r.Defender.At)
}

// State is the sequencer's presentation state.
type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// Status holds the derived game fields refreshed from the oracle. It lags
// the oracle while a capture is being presented.
type Status struct {
	FEN       string            `json:"fen"`
	Turn      string            `json:"turn"`
	Check     bool              `json:"check"`
	Checkmate bool              `json:"checkmate"`
	Draw      bool              `json:"draw"`
	GameOver  bool              `json:"gameOver"`
	Outcome   string            `json:"outcome"`
	Method    string            `json:"method,omitempty"`
	History   []string          `json:"history"`
	LastMove  *rules.MoveResult `json:"lastMove,omitempty"`
}
