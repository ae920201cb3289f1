package pkg

import "github.com/qnkhuat/battlechess/pkg/battle"

type Action string

const (
	ActionContinue      Action = "Continue"
	ActionNewGamePrompt Action = "New Game?"
	ActionNewGameOffer  Action = "New Game"
	ActionNewGameAccept Action = "Yes!"
	ActionNewGameReject Action = "No~"
	ActionExit          Action = "Exit"
	ActionWin           Action = "Win"
	ActionLose          Action = "Lose"
	ActionDraw          Action = "Draw"
)

// ResultAction is the banner shown to color once the game is over, or "" while
// it is still going.
func ResultAction(st battle.Status, color PlayerColor) Action {
	if !st.GameOver {
		return ""
	}
	switch st.Outcome {
	case "1/2-1/2":
		return ActionDraw
	case "1-0":
		if color == White {
			return ActionWin
		}
		if color == Black {
			return ActionLose
		}
	case "0-1":
		if color == Black {
			return ActionWin
		}
		if color == White {
			return ActionLose
		}
	}
	return ""
}
