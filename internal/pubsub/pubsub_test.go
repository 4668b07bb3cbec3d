package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Type    string `msgpack:"type"`
	MatchID string `msgpack:"match_id"`
}

func TestNewWithoutProjectIsNoop(t *testing.T) {
	c, err := New(context.Background(), "")
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, noopClient{}, c)
	assert.NoError(t, c.SendMessage(context.Background(), "padel-match-events", payload{Type: "court-booked"}))
	assert.Error(t, c.SendMessage(context.Background(), "padel-match-events", make(chan int)), "unencodable payloads still fail")
}

func TestEncodeDecode(t *testing.T) {
	b, err := Encode(payload{Type: "match-confirmed", MatchID: "m1"})
	require.NoError(t, err)

	var got payload
	require.NoError(t, Decode(b, &got))
	assert.Equal(t, "m1", got.MatchID)

	assert.Error(t, Decode([]byte{0xc1}, &got))
}

func TestMockRecordsPayload(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.SendMessage(context.Background(), "topic", payload{MatchID: "m2"}))

	calls := m.Calls()
	require.Len(t, calls, 1)
	var got payload
	require.NoError(t, Decode(calls[0].Payload, &got))
	assert.Equal(t, "m2", got.MatchID)
}
