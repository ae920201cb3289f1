package camera

import "context"

// BeginBattleView registers a transition framing the attacker and defender
// squares. Interaction stays locked until the camera returns to the board.
func (e *Engine) BeginBattleView(attacker, defender string) (*Transition, error) {
	pose, err := e.cfg.BattlePose(attacker, defender)
	if err != nil {
		return nil, err
	}
	return e.Begin(pose, e.cfg.TransitionDuration, KindBattle), nil
}

// BeginBoardView registers the return to the overview pose, which unlocks
// interaction on arrival.
func (e *Engine) BeginBoardView() *Transition {
	return e.Begin(e.cfg.DefaultPose, e.cfg.TransitionDuration, KindBoard)
}

func (e *Engine) BeginZoom(a, b string) (*Transition, error) {
	pose, err := e.cfg.BattlePose(a, b)
	if err != nil {
		return nil, err
	}
	return e.Begin(pose, e.cfg.ZoomDuration, KindZoom), nil
}

// BeginReset glides back to the default pose at zoom speed.
func (e *Engine) BeginReset() *Transition {
	return e.Begin(e.cfg.DefaultPose, e.cfg.ZoomDuration, KindBoard)
}

// BeginArenaView frames the centre of the board for a battle that is not
// tied to particular squares.
func (e *Engine) BeginArenaView() *Transition {
	return e.Begin(e.cfg.ArenaPose(), e.cfg.TransitionDuration, KindBattle)
}

func (e *Engine) ToBattleView(ctx context.Context, attacker, defender string) error {
	tr, err := e.BeginBattleView(attacker, defender)
	if err != nil {
		return err
	}
	return e.Run(ctx, tr)
}

func (e *Engine) ToBoardView(ctx context.Context) error {
	return e.Run(ctx, e.BeginBoardView())
}

func (e *Engine) ZoomToSquares(ctx context.Context, a, b string) error {
	tr, err := e.BeginZoom(a, b)
	if err != nil {
		return err
	}
	return e.Run(ctx, tr)
}

func (e *Engine) ResetCamera(ctx context.Context) error {
	return e.Run(ctx, e.BeginReset())
}

func (e *Engine) ToArenaView(ctx context.Context) error {
	return e.Run(ctx, e.BeginArenaView())
}
