package domain

const (
	// AccessLevelCtxKey carries the caller's resolved access level through
	// the request context once the auth middleware has run.
	AccessLevelCtxKey = "efir-accessLevel"
	// BadgeIDCtxKey carries the authenticated badge id, when present.
	BadgeIDCtxKey = "efir-badgeId"
)

// EventChannel is the redis pub/sub channel registration and emergency
// events are fanned out on.
const EventChannel = "efir:events"
