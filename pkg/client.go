package pkg

import (
	"bufio"
	"fmt"
	"net"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/notnil/chess"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"

	"github.com/qnkhuat/battlechess/pkg/battle"
	"github.com/qnkhuat/battlechess/pkg/camera"
	"github.com/qnkhuat/battlechess/pkg/gui"
	"github.com/qnkhuat/battlechess/pkg/rules"
	"github.com/qnkhuat/battlechess/pkg/session"
)

const (
	numrows     = 8
	numcols     = 8
	moveBoxRows = 8
	pageBoard   = "board"
	pageBattle  = "battle"
	pageNewGame = "newgame"
)

// Client is the terminal UI. All fields below Out are owned by the tview
// event loop; the read loop hands messages over with QueueUpdateDraw.
type Client struct {
	App        *tview.Application
	Pages      *tview.Pages
	Board      *tview.Table
	Status     *tview.TextView
	Moves      *tview.TextView
	CameraView *tview.TextView
	Message    *tview.TextView
	BattleView *tview.Modal
	Conn       net.Conn
	Out        chan MessageInterface

	Theme   gui.Theme
	Name    string
	MatchId string
	Color   PlayerColor

	game      session.Snapshot
	isTurn    bool
	battle    *battle.Record
	selecting bool
	selected  chess.Square
	hints     map[chess.Square]bool

	log zerolog.Logger
}

func NewClient(name string, theme gui.Theme, log zerolog.Logger) *Client {
	app := tview.NewApplication()
	cl := &Client{
		App:        app,
		Board:      tview.NewTable(),
		Status:     tview.NewTextView().SetDynamicColors(true),
		Moves:      tview.NewTextView(),
		CameraView: tview.NewTextView(),
		Message:    tview.NewTextView().SetTextColor(theme.Msg),
		Out:        make(chan MessageInterface, ConnQueueSize),
		Theme:      theme,
		Name:       name,
		Color:      Unknown,
		hints:      make(map[chess.Square]bool),
		log:        log.With().Str("component", "client").Logger(),
	}
	cl.Moves.SetTextColor(theme.MoveBox)

	newGameBtn := tview.NewButton(string(ActionNewGameOffer)).SetSelectedFunc(func() {
		cl.Pages.ShowPage(pageNewGame)
	})
	exitBtn := tview.NewButton(string(ActionExit)).SetSelectedFunc(func() {
		cl.App.Stop()
	})

	gameOptions := tview.NewGrid().
		SetColumns(12, 12).
		SetRows(3, 4, 3, -1).
		AddItem(newGameBtn, 0, 0, 1, 1, 0, 0, false).
		AddItem(exitBtn, 0, 1, 1, 1, 0, 0, false).
		AddItem(cl.CameraView, 1, 0, 1, 2, 0, 0, false).
		AddItem(cl.Message, 2, 0, 1, 2, 0, 0, false).
		AddItem(cl.Moves, 3, 0, 1, 2, 0, 0, false)

	layout := tview.NewGrid().
		SetRows(-1, 3, 20, -1).
		SetColumns(-1, 30, 28, -1).
		AddItem(cl.Status, 1, 1, 1, 2, 0, 0, false).
		AddItem(cl.Board, 2, 1, 1, 1, 0, 0, true).
		AddItem(gameOptions, 2, 2, 1, 1, 0, 0, false)

	cl.BattleView = tview.NewModal().
		AddButtons([]string{string(ActionContinue)}).
		SetDoneFunc(func(_ int, label string) {
			if label == string(ActionContinue) && cl.battle != nil {
				cl.send(MessageBattleDone{BattleId: cl.battle.ID})
			}
		})

	newGame := tview.NewModal().
		SetText(string(ActionNewGamePrompt)).
		AddButtons([]string{string(ActionNewGameAccept), string(ActionNewGameReject)}).
		SetDoneFunc(func(_ int, label string) {
			if label == string(ActionNewGameAccept) {
				cl.send(MessageReset{})
			}
			cl.Pages.HidePage(pageNewGame)
			cl.App.SetFocus(cl.Board)
		})

	cl.Pages = tview.NewPages().
		AddPage(pageBoard, layout, true, true).
		AddPage(pageBattle, cl.BattleView, true, false).
		AddPage(pageNewGame, newGame, true, false)

	cl.initTable()
	cl.render()
	return cl
}

func (cl *Client) initTable() {
	cl.Board.SetSelectable(true, true)
	cl.Board.Select(0, 1).SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			cl.App.Stop()
		}
	}).SetSelectedFunc(cl.selectCell)
}

func (cl *Client) selectCell(row, col int) {
	if row >= numrows || col < 1 {
		return
	}
	view := cl.boardView()
	if view == nil {
		return
	}
	sq := view.SquareAt(row, col-1)

	switch {
	case cl.Color == Viewer:
		cl.setMessage("viewers cannot move")
	case cl.battle != nil:
		cl.setMessage("battle in progress")
	case !cl.isTurn:
		cl.setMessage("not your turn")
	case cl.selecting && sq == cl.selected:
		cl.clearSelection()
	case cl.selecting:
		cl.log.Debug().Str("from", cl.selected.String()).Str("to", sq.String()).Msg("Move")
		cl.send(MessageMove{From: cl.selected.String(), To: sq.String()})
		cl.clearSelection()
	default:
		cl.selecting = true
		cl.selected = sq
		cl.send(MessageLegalMoves{Square: sq.String()})
	}
	cl.render()
}

// send queues m for HandleWrite without blocking the UI loop.
func (cl *Client) send(m MessageInterface) bool {
	select {
	case cl.Out <- m:
		return true
	default:
		cl.log.Warn().Stringer("type", m.Type()).Msg("Outgoing queue full, dropping message")
		cl.setMessage("not connected, try again")
		return false
	}
}

func (cl *Client) clearSelection() {
	cl.selecting = false
	cl.hints = make(map[chess.Square]bool)
}

func (cl *Client) setMessage(msg string) {
	cl.Message.SetText(msg)
}

func (cl *Client) boardView() *gui.BoardView {
	fen := cl.game.Status.FEN
	if fen == "" {
		return nil
	}
	view, err := gui.NewBoardView(fen, cl.Color == Black)
	if err != nil {
		cl.log.Warn().Err(err).Str("fen", fen).Msg("Bad FEN from server")
		return nil
	}
	return view
}

func squares(names ...string) []chess.Square {
	var out []chess.Square
	for _, n := range names {
		if sq, err := rules.ParseSquare(n); err == nil {
			out = append(out, sq)
		}
	}
	return out
}

func (cl *Client) render() {
	view := cl.boardView()
	if view == nil {
		cl.Status.SetText("Connecting...")
		return
	}
	st := cl.game.Status
	if st.LastMove != nil {
		view.LastMove = squares(st.LastMove.From, st.LastMove.To)
	}
	if st.Check {
		if turn, err := rules.ParseSide(st.Turn); err == nil {
			view.MarkKing(turn)
		}
	}
	if cl.battle != nil {
		view.Battle = squares(cl.battle.Attacker.From, cl.battle.Defender.At)
	}
	view.Selecting = cl.selecting
	view.Selected = cl.selected
	view.Hints = cl.hints

	for r := 0; r < numrows; r++ {
		cl.Board.SetCell(r, 0, tview.NewTableCell(view.RankLabel(r)).
			SetTextColor(cl.Theme.Rank).
			SetAlign(tview.AlignCenter).
			SetSelectable(false))
		for f := 0; f < numcols; f++ {
			sq := view.SquareAt(r, f)
			p := view.Board.Piece(sq)
			bg := cl.Theme.SquareBg(view, sq)
			cl.Board.SetCell(r, f+1, tview.NewTableCell(gui.PieceText(p)).
				SetAlign(tview.AlignCenter).
				SetStyle(cl.Theme.PieceStyle(p, bg)))
		}
	}
	cl.Board.SetCell(numrows, 0, tview.NewTableCell("").SetSelectable(false))
	for f := 0; f < numcols; f++ {
		cl.Board.SetCell(numrows, f+1, tview.NewTableCell(view.FileLabel(f)).
			SetTextColor(cl.Theme.File).
			SetAlign(tview.AlignCenter).
			SetSelectable(false))
	}

	cl.Status.SetText(cl.statusLine())
	cl.Moves.SetText(gui.MoveBox(st.History, moveBoxRows))
}

func (cl *Client) statusLine() string {
	st := cl.game.Status
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s (%s)  ", cl.MatchId, cl.Name, cl.Color)
	switch {
	case st.GameOver:
		fmt.Fprintf(&b, "%s %s", st.Outcome, st.Method)
		if a := ResultAction(st, cl.Color); a != "" {
			fmt.Fprintf(&b, " - %s", a)
		}
	case cl.battle != nil:
		fmt.Fprintf(&b, "Battle! %d queued", cl.game.Pending)
	default:
		fmt.Fprintf(&b, "%s to move", st.Turn)
		if st.Check {
			b.WriteString(", check")
		}
	}
	return b.String()
}

func (cl *Client) showBattle() {
	if cl.battle == nil {
		cl.Pages.HidePage(pageBattle)
		cl.App.SetFocus(cl.Board)
		return
	}
	text := fmt.Sprintf("%s\n%s attacks %s", cl.battle.Move.SAN, cl.battle.Attacker.Piece, cl.battle.Defender.Piece)
	cl.BattleView.SetText(text)
	if cl.Color == Viewer {
		cl.BattleView.ClearButtons()
	}
	cl.Pages.ShowPage(pageBattle)
	cl.App.SetFocus(cl.BattleView)
}

func (cl *Client) setCamera(vs camera.ViewState) {
	color := cl.Theme.CameraFree
	if !vs.Enabled {
		color = cl.Theme.CameraLocked
	}
	cl.CameraView.SetTextColor(color)
	cl.CameraView.SetText(gui.CameraLabel(vs))
}

func (cl *Client) setGame(snap session.Snapshot, isTurn bool) {
	cl.game = snap
	cl.isTurn = isTurn
	cl.battle = snap.Battle
	cl.setCamera(snap.Camera)
	cl.showBattle()
}

// apply folds one server message into the client's state. It runs on the
// tview event loop.
func (cl *Client) apply(msg MessageInterface) {
	switch msg := msg.(type) {
	case *MessageConnect:
		cl.MatchId = msg.MatchId
		cl.Color = msg.Color
		cl.setGame(msg.Game, msg.IsTurn)
	case *MessageGame:
		cl.setGame(msg.Game, msg.IsTurn)
	case *MessageBattle:
		switch msg.Event {
		case BattleStarted:
			rec := msg.Battle
			cl.battle = &rec
		case BattleFinished:
			cl.battle = msg.Next
		}
		cl.game.Pending = msg.Pending
		cl.showBattle()
	case *MessageCamera:
		cl.game.Camera = msg.View
		cl.setCamera(msg.View)
	case *MessageLegalMoves:
		if cl.selecting && msg.Square == cl.selected.String() {
			cl.hints = make(map[chess.Square]bool)
			for _, m := range msg.Moves {
				for _, sq := range squares(m.To) {
					cl.hints[sq] = true
				}
			}
		}
	case *MessageReject:
		cl.setMessage(msg.Reason)
	default:
		cl.log.Debug().Stringer("type", msg.Type()).Msg("Unhandled message")
	}
	cl.render()
}

// Connect dials the server and joins matchId, or a new match when empty.
func (cl *Client) Connect(addr, matchId string, viewer bool) error {
	cl.log.Info().Str("addr", addr).Msg("Connecting")
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	b, err := Encode(MessageJoin{MatchId: matchId, Name: cl.Name, Viewer: viewer})
	if err != nil {
		conn.Close()
		return err
	}
	if _, err := conn.Write(b); err != nil {
		conn.Close()
		return fmt.Errorf("join: %w", err)
	}
	cl.Conn = conn
	return nil
}

func (cl *Client) HandleWrite() {
	for command := range cl.Out {
		b, err := Encode(command)
		if err != nil {
			cl.log.Error().Err(err).Msg("Failed to encode")
			continue
		}
		if _, err := cl.Conn.Write(b); err != nil {
			cl.log.Error().Err(err).Msg("Failed to write")
			return
		}
		cl.log.Debug().Stringer("type", command.Type()).Msg("Sent")
	}
}

// HandleRead applies server messages until the connection closes, then stops
// the application.
func (cl *Client) HandleRead() {
	scanner := bufio.NewScanner(cl.Conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	for scanner.Scan() {
		t, err := DecodeTransport(scanner.Bytes())
		if err != nil {
			cl.log.Warn().Err(err).Msg("Dropping malformed message")
			continue
		}
		msg, err := Decode(t)
		if err != nil {
			cl.log.Warn().Err(err).Msg("Dropping undecodable message")
			continue
		}
		cl.App.QueueUpdateDraw(func() { cl.apply(msg) })
	}
	cl.log.Info().Msg("Disconnected from server")
	cl.App.Stop()
}

func (cl *Client) Run() error {
	return cl.App.SetRoot(cl.Pages, true).EnableMouse(true).Run()
}

func (cl *Client) Disconnect() {
	if cl.Conn != nil {
		cl.Conn.Close()
	}
}
