// Package gui holds the terminal client's board model and colors.
package gui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/notnil/chess"

	"github.com/qnkhuat/battlechess/pkg/camera"
)

// BoardView is one frame of the board as a player sees it.
type BoardView struct {
	Board *chess.Board
	// Flip draws black at the bottom.
	Flip bool

	LastMove  []chess.Square
	Selected  chess.Square
	Selecting bool
	Hints     map[chess.Square]bool
	// Check is the king square of the side in check, when InCheck.
	Check   chess.Square
	InCheck bool
	// Battle holds the attacker and defender squares while a battle is shown.
	Battle []chess.Square
}

// NewBoardView parses fen into a view with nothing highlighted.
func NewBoardView(fen string, flip bool) (*BoardView, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, err
	}
	game := chess.NewGame(opt)
	return &BoardView{
		Board: game.Position().Board(),
		Flip:  flip,
		Hints: make(map[chess.Square]bool),
	}, nil
}

func getSquare(f chess.File, r chess.Rank) chess.Square {
	return chess.Square((int(r) * 8) + int(f))
}

// SquareAt maps a screen cell (row 0 at the top, col 0 at the left) to the
// board square drawn there.
func (v *BoardView) SquareAt(row, col int) chess.Square {
	if v.Flip {
		return getSquare(chess.File(7-col), chess.Rank(row))
	}
	return getSquare(chess.File(col), chess.Rank(7-row))
}

// RankLabel is the rank printed left of screen row row.
func (v *BoardView) RankLabel(row int) string {
	return v.SquareAt(row, 0).Rank().String()
}

// FileLabel is the file printed under screen column col.
func (v *BoardView) FileLabel(col int) string {
	return v.SquareAt(7, col).File().String()
}

// MarkKing sets Check to the king of side.
func (v *BoardView) MarkKing(side chess.Color) {
	king := chess.WhiteKing
	if side == chess.Black {
		king = chess.BlackKing
	}
	for sq, p := range v.Board.SquareMap() {
		if p == king {
			v.Check = sq
			v.InCheck = true
			return
		}
	}
}

func contains(squares []chess.Square, sq chess.Square) bool {
	for _, s := range squares {
		if s == sq {
			return true
		}
	}
	return false
}

// squareColor is the color of the board square itself.
func squareColor(sq chess.Square) chess.Color {
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return chess.Black
	}
	return chess.White
}

// SquareBg picks the background for sq. Battle squares win over check, which
// wins over selection and hints, which win over the last move.
func (t Theme) SquareBg(v *BoardView, sq chess.Square) tcell.Color {
	switch {
	case contains(v.Battle, sq):
		return t.SquareBattle
	case v.InCheck && v.Check == sq:
		return t.SquareCheck
	case v.Selecting && v.Selected == sq, v.Hints[sq]:
		return t.SquareHint
	case contains(v.LastMove, sq):
		return t.SquareHigh
	case squareColor(sq) == chess.Black:
		return t.SquareDark
	default:
		return t.SquareLight
	}
}

// PieceStyle applies the theme's style to a piece based upon its color
func (t Theme) PieceStyle(p chess.Piece, bg tcell.Color) tcell.Style {
	style := tcell.StyleDefault.Background(bg)
	if p.Color() == chess.White {
		return style.Foreground(t.White)
	}
	return style.Foreground(t.Black)
}

// PieceText is the two column cell text for p.
func PieceText(p chess.Piece) string {
	if p == chess.NoPiece {
		return "  "
	}
	return p.String() + " "
}

// MovePair is one numbered row of the move list.
type MovePair struct {
	Index string
	White string
	Black string
}

// MovePairs groups SAN history into numbered pairs and keeps the last max.
func MovePairs(history []string, max int) []MovePair {
	var pairs []MovePair
	for i, san := range history {
		if i%2 == 0 {
			pairs = append(pairs, MovePair{Index: fmt.Sprintf("%d.", i/2+1), White: san})
			continue
		}
		pairs[len(pairs)-1].Black = san
	}
	if max > 0 && len(pairs) > max {
		pairs = pairs[len(pairs)-max:]
	}
	return pairs
}

// MoveBox renders MovePairs inside a box, one pair per line.
func MoveBox(history []string, rows int) string {
	var b strings.Builder
	b.WriteString("┏━━━━━━━━━━━━━━━━━━━━━┓\n")
	pairs := MovePairs(history, rows)
	for i := 0; i < rows; i++ {
		var p MovePair
		if i < len(pairs) {
			p = pairs[i]
		}
		fmt.Fprintf(&b, "┃ %-3v %-7v %-7v ┃\n", p.Index, p.White, p.Black)
	}
	b.WriteString("┗━━━━━━━━━━━━━━━━━━━━━┛")
	return b.String()
}

// CameraLabel describes the camera for the side panel.
func CameraLabel(vs camera.ViewState) string {
	lock := "free"
	if !vs.Enabled {
		lock = "locked"
	}
	return fmt.Sprintf("eye %s\nlook %s\n%s", vs.Pose.Position, vs.Pose.LookAt, lock)
}
