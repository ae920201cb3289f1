package pkg

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/notnil/chess"
	"github.com/rs/zerolog"
)

type PlayerColor int

const (
	White PlayerColor = iota
	Black
	Viewer
	Unknown
)

func (pc PlayerColor) String() string {
	switch pc {
	case White:
		return "White"
	case Black:
		return "Black"
	case Viewer:
		return "Viewer"
	default:
		return "Unknown"
	}
}

// Side maps a seated color to the chess side it moves.
func (pc PlayerColor) Side() (chess.Color, bool) {
	switch pc {
	case White:
		return chess.White, true
	case Black:
		return chess.Black, true
	default:
		return chess.NoColor, false
	}
}

const (
	ConnQueueSize = 64
	maxLineSize   = 1 << 20
)

type Player struct {
	Conn  net.Conn
	Color PlayerColor
	Out   chan MessageInterface
	Id    int
	Name  string

	scanner   *bufio.Scanner
	closeOnce sync.Once
	log       zerolog.Logger
}

func NewPlayer(conn net.Conn, id int, log zerolog.Logger) *Player {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &Player{
		Conn:    conn,
		Out:     make(chan MessageInterface, ConnQueueSize),
		Id:      id,
		Color:   Unknown,
		scanner: scanner,
		log:     log.With().Int("player", id).Logger(),
	}
}

// Next reads one message envelope, stamped with the player's id.
func (p *Player) Next() (MessageTransport, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return MessageTransport{}, err
		}
		return MessageTransport{}, io.EOF
	}
	t, err := DecodeTransport(p.scanner.Bytes())
	if err != nil {
		return t, err
	}
	t.PlayerId = p.Id
	return t, nil
}

// HandleRead hands every message from the connection to deliver until the
// connection closes or deliver returns false.
func (p *Player) HandleRead(deliver func(MessageTransport) bool) {
	for {
		t, err := p.Next()
		switch {
		case errors.Is(err, io.EOF):
			return
		case errors.Is(err, errMalformed):
			p.log.Warn().Err(err).Msg("Dropping malformed message")
			continue
		case err != nil:
			p.log.Debug().Err(err).Msg("Read loop ended")
			return
		}
		if !deliver(t) {
			return
		}
	}
}

// HandleWrite drains Out onto the connection until Out is closed.
func (p *Player) HandleWrite() {
	for message := range p.Out {
		b, err := Encode(message)
		if err != nil {
			p.log.Error().Err(err).Msg("Failed to encode")
			continue
		}
		if _, err := p.Conn.Write(b); err != nil {
			p.log.Warn().Err(err).Stringer("type", message.Type()).Msg("Failed to write")
		}
	}
}

// Send queues m without blocking. It reports false when the queue is full.
func (p *Player) Send(m MessageInterface) bool {
	select {
	case p.Out <- m:
		return true
	default:
		p.log.Warn().Stringer("type", m.Type()).Msg("Outgoing queue full, dropping message")
		return false
	}
}

// Disconnect closes the connection and the outgoing queue. The caller must
// not Send afterwards.
func (p *Player) Disconnect() {
	p.closeOnce.Do(func() {
		p.Conn.Close()
		close(p.Out)
	})
}
