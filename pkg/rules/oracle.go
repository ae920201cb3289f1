// Package rules adapts github.com/notnil/chess into the rules oracle the
// battle sequencer consults for legality and board state.
package rules

import (
	"fmt"

	"github.com/notnil/chess"
)

// MoveResult describes a move the oracle accepted, or one it would accept
// when returned from LegalMoves.
type MoveResult struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Piece     PieceRef  `json:"piece"`
	Captured  *PieceRef `json:"captured,omitempty"`
	Promotion string    `json:"promotion,omitempty"`
	SAN       string    `json:"san"`
	UCI       string    `json:"uci"`
	Check     bool      `json:"check"`
	EnPassant bool      `json:"enPassant"`
	Castle    bool      `json:"castle"`
}

// Oracle owns a single chess game. It is not safe for concurrent use; the
// battle sequencer serialises access to it.
type Oracle struct {
	game *chess.Game
}

func newGame() *chess.Game {
	return chess.NewGame(chess.UseNotation(chess.UCINotation{}))
}

func NewOracle() *Oracle {
	return &Oracle{game: newGame()}
}

// NewOracleFromFEN starts the oracle from an arbitrary position. Reset still
// returns to the standard starting position.
func NewOracleFromFEN(fen string) (*Oracle, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return &Oracle{game: chess.NewGame(opt, chess.UseNotation(chess.UCINotation{}))}, nil
}

// ApplyMove validates and plays from->to. An empty promotion on a promoting
// pawn move promotes to a queen. Every expected failure wraps ErrRejectedMove.
func (o *Oracle) ApplyMove(from, to, promotion string) (*MoveResult, error) {
	s1, err := ParseSquare(from)
	if err != nil {
		return nil, err
	}
	s2, err := ParseSquare(to)
	if err != nil {
		return nil, err
	}
	if o.IsGameOver() {
		return nil, ErrGameOver
	}

	promo := chess.NoPieceType
	if promotion != "" {
		promo, err = ParseKind(promotion)
		if err != nil || promo == chess.King || promo == chess.Pawn {
			return nil, fmt.Errorf("%w: %q", ErrBadPromotion, promotion)
		}
	}

	pos := o.game.Position()
	mover := pos.Board().Piece(s1)
	if mover == chess.NoPiece {
		return nil, fmt.Errorf("%w: %s", ErrEmptySquare, from)
	}
	if mover.Color() != pos.Turn() {
		return nil, fmt.Errorf("%w: %s to move", ErrWrongTurn, SideName(pos.Turn()))
	}

	move := o.findMove(s1, s2, promo)
	if move == nil {
		return nil, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	}

	result := describe(pos, move)
	if err := o.game.Move(move); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	return result, nil
}

func (o *Oracle) findMove(s1, s2 chess.Square, promo chess.PieceType) *chess.Move {
	for _, m := range o.game.ValidMoves() {
		if m.S1() != s1 || m.S2() != s2 {
			continue
		}
		switch {
		case m.Promo() == chess.NoPieceType:
			return m
		case promo == chess.NoPieceType && m.Promo() == chess.Queen:
			return m
		case m.Promo() == promo:
			return m
		}
	}
	return nil
}

func describe(pos *chess.Position, m *chess.Move) *MoveResult {
	board := pos.Board()
	res := &MoveResult{
		From:      m.S1().String(),
		To:        m.S2().String(),
		Piece:     pieceRef(board.Piece(m.S1())),
		SAN:       chess.AlgebraicNotation{}.Encode(pos, m),
		UCI:       chess.UCINotation{}.Encode(pos, m),
		Check:     m.HasTag(chess.Check),
		EnPassant: m.HasTag(chess.EnPassant),
		Castle:    m.HasTag(chess.KingSideCastle) || m.HasTag(chess.QueenSideCastle),
	}
	if m.Promo() != chess.NoPieceType {
		res.Promotion = KindName(m.Promo())
	}
	if target := board.Piece(m.S2()); target != chess.NoPiece {
		ref := pieceRef(target)
		res.Captured = &ref
	} else if res.EnPassant {
		ref := PieceRef{Kind: chess.Pawn, Side: pos.Turn().Other()}
		res.Captured = &ref
	}
	return res
}

// Occupant returns the piece on square, if any. Malformed squares report
// no occupant.
func (o *Oracle) Occupant(square string) (PieceRef, bool) {
	sq, err := ParseSquare(square)
	if err != nil {
		return PieceRef{}, false
	}
	p := o.game.Position().Board().Piece(sq)
	if p == chess.NoPiece {
		return PieceRef{}, false
	}
	return pieceRef(p), true
}

// LegalMoves lists the moves available from square for the side to move.
func (o *Oracle) LegalMoves(square string) ([]MoveResult, error) {
	sq, err := ParseSquare(square)
	if err != nil {
		return nil, err
	}
	if o.IsGameOver() {
		return nil, nil
	}
	pos := o.game.Position()
	var moves []MoveResult
	for _, m := range o.game.ValidMoves() {
		if m.S1() == sq {
			moves = append(moves, *describe(pos, m))
		}
	}
	return moves, nil
}

func (o *Oracle) Turn() chess.Color {
	return o.game.Position().Turn()
}

func (o *Oracle) lastMove() *chess.Move {
	moves := o.game.Moves()
	if len(moves) == 0 {
		return nil
	}
	return moves[len(moves)-1]
}

// IsCheck reports whether the side to move is in check.
func (o *Oracle) IsCheck() bool {
	if o.IsCheckmate() {
		return true
	}
	m := o.lastMove()
	return m != nil && m.HasTag(chess.Check)
}

func (o *Oracle) IsCheckmate() bool {
	return o.game.Method() == chess.Checkmate
}

// IsDraw covers automatic draws as well as positions where a threefold
// repetition or fifty-move claim is available.
func (o *Oracle) IsDraw() bool {
	if o.game.Outcome() == chess.Draw {
		return true
	}
	for _, method := range o.game.EligibleDraws() {
		if method == chess.ThreefoldRepetition || method == chess.FiftyMoveRule {
			return true
		}
	}
	return false
}

func (o *Oracle) IsGameOver() bool {
	return o.game.Outcome() != chess.NoOutcome || o.IsDraw()
}

// Outcome reports the result string ("*", "1-0", "0-1", "1/2-1/2").
func (o *Oracle) Outcome() string {
	if o.game.Outcome() == chess.NoOutcome && o.IsDraw() {
		return string(chess.Draw)
	}
	return string(o.game.Outcome())
}

func (o *Oracle) Method() string {
	if o.game.Method() == chess.NoMethod {
		for _, method := range o.game.EligibleDraws() {
			if method == chess.ThreefoldRepetition || method == chess.FiftyMoveRule {
				return method.String()
			}
		}
		return ""
	}
	return o.game.Method().String()
}

// History returns the moves played so far in standard algebraic notation.
func (o *Oracle) History() []string {
	positions := o.game.Positions()
	moves := o.game.Moves()
	history := make([]string, 0, len(moves))
	for i, move := range moves {
		history = append(history, chess.AlgebraicNotation{}.Encode(positions[i], move))
	}
	return history
}

func (o *Oracle) FEN() string {
	return o.game.Position().String()
}

// PGN renders the game so far.
func (o *Oracle) PGN() string {
	return o.game.String()
}

// Reset returns the oracle to the standard starting position.
func (o *Oracle) Reset() {
	o.game = newGame()
}
