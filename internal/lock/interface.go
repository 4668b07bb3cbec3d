package lock

import "context"

// Locker serializes work on named keys. Lock acquires every key (in sorted
// order, so overlapping key sets cannot deadlock) and returns a function that
// releases them. Lock fails only when ctx is done before all keys are held.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// SlotKey identifies a (court, date, time) slot.
func SlotKey(courtID, date, time string) string {
	return "slot:" + courtID + ":" + date + ":" + time
}

// MatchKey identifies a match.
func MatchKey(matchID string) string {
	return "match:" + matchID
}

// PlayerSlotKey identifies one player's (date, time).
func PlayerSlotKey(playerID, date, time string) string {
	return "player:" + playerID + ":" + date + ":" + time
}
