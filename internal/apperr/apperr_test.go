package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelMatchesKind(t *testing.T) {
	err := MatchFull("match %s is full", "m1")

	assert.ErrorIs(t, err, ErrMatchFull)
	assert.NotErrorIs(t, err, ErrSlotOccupied)
	assert.Equal(t, "match m1 is full", err.Error())
}

func TestKindOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("failed to respond: %w", NotInvited("player p1 was not invited"))

	assert.Equal(t, KindNotInvited, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, ErrNotInvited)
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestErrorMessageWithCause(t *testing.T) {
	cause := errors.New("disk full")
	err := &Error{Kind: KindInternal, Msg: "failed to save", Err: cause}

	assert.Equal(t, "failed to save: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "SLOT_OCCUPIED", ErrSlotOccupied.Error())
}
