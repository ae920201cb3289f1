package rules

import (
	"encoding/json"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSquare(t *testing.T) {
	sq, err := ParseSquare("a1")
	require.NoError(t, err)
	assert.Equal(t, chess.A1, sq)

	sq, err = ParseSquare("H8")
	require.NoError(t, err)
	assert.Equal(t, chess.H8, sq)

	for _, bad := range []string{"", "e", "e9", "i1", "e10", " e4", "44"} {
		_, err := ParseSquare(bad)
		assert.ErrorIs(t, err, ErrMalformedSquare, bad)
	}
}

func TestSquareCoords(t *testing.T) {
	file, rank, err := SquareCoords("e4")
	require.NoError(t, err)
	assert.Equal(t, 4, file)
	assert.Equal(t, 4, rank)

	file, rank, err = SquareCoords("a8")
	require.NoError(t, err)
	assert.Equal(t, 0, file)
	assert.Equal(t, 8, rank)
}

func TestPieceRefJSON(t *testing.T) {
	p := PieceRef{Kind: chess.Knight, Side: chess.Black}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"knight","side":"black"}`, string(data))

	var back PieceRef
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
	assert.Equal(t, "black knight", back.String())
}
