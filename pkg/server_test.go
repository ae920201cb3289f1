package pkg

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_NamesNewMatches(t *testing.T) {
	s, _ := newTestServer(t, 0)

	a := dial(t, s, MessageJoin{Name: "alice"})
	ca := expect[*MessageConnect](t, a)
	require.NotEmpty(t, ca.MatchId)
	assert.True(t, strings.Contains(ca.MatchId, "-"))

	b := dial(t, s, MessageJoin{Name: "bob"})
	cb := expect[*MessageConnect](t, b)
	assert.NotEqual(t, ca.MatchId, cb.MatchId)
	assert.Equal(t, White, cb.Color)

	_, ok := s.Match(ca.MatchId)
	assert.True(t, ok)
}

func TestServer_RequiresJoinFirst(t *testing.T) {
	s, _ := newTestServer(t, 0)

	client, server := net.Pipe()
	defer client.Close()
	go s.HandleConn(server)
	b, err := Encode(MessageMove{From: "e2", To: "e4"})
	require.NoError(t, err)
	_, err = client.Write(b)
	require.NoError(t, err)

	line, err := readLine(client)
	require.NoError(t, err)
	tr, err := DecodeTransport(line)
	require.NoError(t, err)
	assert.Equal(t, TypeMessageReject, tr.MsgType)
}

func readLine(conn net.Conn) ([]byte, error) {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var out []byte
	buf := make([]byte, 1)
	for {
		if _, err := conn.Read(buf); err != nil {
			return out, err
		}
		if buf[0] == '\n' {
			return out, nil
		}
		out = append(out, buf[0])
	}
}

func TestServer_CleansIdleMatches(t *testing.T) {
	s, journal := newTestServer(t, 0)
	s.cfg.IdleTimeout = 0

	tc := dial(t, s, MessageJoin{MatchId: "idle"})
	expect[*MessageConnect](t, tc)
	m, ok := s.Match("idle")
	require.True(t, ok)

	assert.Zero(t, s.cleanIdle(), "a connected match is never idle")

	tc.conn.Close()
	require.Eventually(t, func() bool { return m.NumPlayers() == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, s.cleanIdle())
	_, ok = s.Match("idle")
	assert.False(t, ok)

	games, err := journal.Games()
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.NotNil(t, games[0].EndedAt)
}
