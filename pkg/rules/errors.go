package rules

import "errors"

// ErrRejectedMove is the root of every expected move rejection. Callers test
// with errors.Is and treat any match as "move not applied".
var ErrRejectedMove = errors.New("move rejected")

var (
	ErrMalformedSquare = rejection("malformed square")
	ErrIllegalMove     = rejection("illegal move")
	ErrWrongTurn       = rejection("not this side's turn")
	ErrEmptySquare     = rejection("no piece on origin square")
	ErrGameOver        = rejection("game is over")
	ErrBadPromotion    = rejection("invalid promotion piece")
)

type rejectionError struct {
	msg string
}

func rejection(msg string) error {
	return &rejectionError{msg: msg}
}

func (e *rejectionError) Error() string { return e.msg }

func (e *rejectionError) Unwrap() error { return ErrRejectedMove }
