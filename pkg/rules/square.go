package rules

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

const (
	numFiles = 8
	numRanks = 8
)

func getSquare(f chess.File, r chess.Rank) chess.Square {
	return chess.Square((int(r) * numFiles) + int(f))
}

// ParseSquare converts an algebraic coordinate ("e4") to a chess.Square.
// Uppercase files are accepted; surrounding whitespace is not.
func ParseSquare(s string) (chess.Square, error) {
	if len(s) != 2 {
		return chess.NoSquare, fmt.Errorf("%w: %q", ErrMalformedSquare, s)
	}
	file := strings.ToLower(s[:1])[0]
	rank := s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return chess.NoSquare, fmt.Errorf("%w: %q", ErrMalformedSquare, s)
	}
	return getSquare(chess.File(file-'a'), chess.Rank(rank-'1')), nil
}

// SquareCoords returns the zero-based file index and the one-based rank of a
// square, the form the camera framing works in.
func SquareCoords(s string) (file int, rank int, err error) {
	sq, err := ParseSquare(s)
	if err != nil {
		return 0, 0, err
	}
	return int(sq.File()), int(sq.Rank()) + 1, nil
}

// ValidSquare reports whether s is a well formed algebraic coordinate.
func ValidSquare(s string) bool {
	_, err := ParseSquare(s)
	return err == nil
}
