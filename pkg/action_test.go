package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qnkhuat/battlechess/pkg/battle"
)

func TestResultAction(t *testing.T) {
	whiteWins := battle.Status{GameOver: true, Outcome: "1-0"}
	assert.Equal(t, ActionWin, ResultAction(whiteWins, White))
	assert.Equal(t, ActionLose, ResultAction(whiteWins, Black))
	assert.Equal(t, Action(""), ResultAction(whiteWins, Viewer))

	draw := battle.Status{GameOver: true, Outcome: "1/2-1/2"}
	assert.Equal(t, ActionDraw, ResultAction(draw, Black))

	assert.Equal(t, Action(""), ResultAction(battle.Status{Outcome: "*"}, White))
}
