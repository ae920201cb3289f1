package pkg

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qnkhuat/battlechess/pkg/battle"
	"github.com/qnkhuat/battlechess/pkg/camera"
	"github.com/qnkhuat/battlechess/pkg/rules"
	"github.com/qnkhuat/battlechess/pkg/session"
)

type MessageType int

const (
	TypeMessageGame MessageType = iota
	TypeMessageMove
	TypeMessageTransport
	TypeMessageConnect
	TypeMessageJoin
	TypeMessageBattle
	TypeMessageBattleDone
	TypeMessageCamera
	TypeMessageReset
	TypeMessageReject
	TypeMessageLegalMoves
)

func (m MessageType) String() string {
	switch m {
	case TypeMessageGame:
		return "TypeMessageGame"
	case TypeMessageMove:
		return "TypeMessageMove"
	case TypeMessageTransport:
		return "TypeMessageTransport"
	case TypeMessageConnect:
		return "TypeMessageConnect"
	case TypeMessageJoin:
		return "TypeMessageJoin"
	case TypeMessageBattle:
		return "TypeMessageBattle"
	case TypeMessageBattleDone:
		return "TypeMessageBattleDone"
	case TypeMessageCamera:
		return "TypeMessageCamera"
	case TypeMessageReset:
		return "TypeMessageReset"
	case TypeMessageReject:
		return "TypeMessageReject"
	case TypeMessageLegalMoves:
		return "TypeMessageLegalMoves"
	default:
		return "Unknown MessageType"
	}
}

type MessageInterface interface {
	Type() MessageType
}

// MessageTransport is the envelope every message travels in, one JSON
// object per line. PlayerId is filled in by the server on receipt.
type MessageTransport struct {
	MsgType  MessageType
	Data     json.RawMessage
	PlayerId int
}

func (m MessageTransport) Type() MessageType { return TypeMessageTransport }

// Client -> server

// MessageJoin is the first line a client sends. An empty MatchId asks for a
// new match.
type MessageJoin struct {
	MatchId string
	Name    string
	Viewer  bool
}

func (m MessageJoin) Type() MessageType { return TypeMessageJoin }

type MessageMove struct {
	From      string
	To        string
	Promotion string `json:",omitempty"`
}

func (m MessageMove) Type() MessageType { return TypeMessageMove }

// MessageBattleDone ends the battle with BattleId if it is still the active
// one.
type MessageBattleDone struct {
	BattleId uint64
}

func (m MessageBattleDone) Type() MessageType { return TypeMessageBattleDone }

type MessageReset struct{}

func (m MessageReset) Type() MessageType { return TypeMessageReset }

// MessageLegalMoves is a request when Moves is empty and the reply
// otherwise.
type MessageLegalMoves struct {
	Square string
	Moves  []rules.MoveResult `json:",omitempty"`
}

func (m MessageLegalMoves) Type() MessageType { return TypeMessageLegalMoves }

// Server -> client

type MessageConnect struct {
	MatchId string
	Color   PlayerColor
	Game    session.Snapshot
	IsTurn  bool
}

func (m MessageConnect) Type() MessageType { return TypeMessageConnect }

type MessageGame struct {
	Game   session.Snapshot
	IsTurn bool
}

func (m MessageGame) Type() MessageType { return TypeMessageGame }

type BattleEvent string

const (
	BattleStarted  BattleEvent = "started"
	BattleQueued   BattleEvent = "queued"
	BattleFinished BattleEvent = "finished"
)

type MessageBattle struct {
	Event   BattleEvent
	Battle  battle.Record
	Next    *battle.Record `json:",omitempty"`
	Pending int
}

func (m MessageBattle) Type() MessageType { return TypeMessageBattle }

type MessageCamera struct {
	View camera.ViewState
}

func (m MessageCamera) Type() MessageType { return TypeMessageCamera }

type MessageReject struct {
	Reason string
}

func (m MessageReject) Type() MessageType { return TypeMessageReject }

// Encode wraps m in a transport envelope and terminates it with a newline.
func Encode(m MessageInterface) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	b, err := json.Marshal(MessageTransport{MsgType: m.Type(), Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode transport: %w", err)
	}
	return append(b, '\n'), nil
}

var errMalformed = errors.New("malformed message")

// DecodeTransport parses one line into its envelope.
func DecodeTransport(line []byte) (MessageTransport, error) {
	var t MessageTransport
	if err := json.Unmarshal(line, &t); err != nil {
		return t, fmt.Errorf("%w: %v", errMalformed, err)
	}
	return t, nil
}

// Decode unpacks the payload of t into its concrete message type.
func Decode(t MessageTransport) (MessageInterface, error) {
	var m MessageInterface
	switch t.MsgType {
	case TypeMessageGame:
		m = &MessageGame{}
	case TypeMessageMove:
		m = &MessageMove{}
	case TypeMessageConnect:
		m = &MessageConnect{}
	case TypeMessageJoin:
		m = &MessageJoin{}
	case TypeMessageBattle:
		m = &MessageBattle{}
	case TypeMessageBattleDone:
		m = &MessageBattleDone{}
	case TypeMessageCamera:
		m = &MessageCamera{}
	case TypeMessageReset:
		m = &MessageReset{}
	case TypeMessageReject:
		m = &MessageReject{}
	case TypeMessageLegalMoves:
		m = &MessageLegalMoves{}
	default:
		return nil, fmt.Errorf("unknown message type %d", int(t.MsgType))
	}
	if len(t.Data) > 0 {
		if err := json.Unmarshal(t.Data, m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t.MsgType, err)
		}
	}
	return m, nil
}
