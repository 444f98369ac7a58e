package domain

import "time"

// EventType names a successful mutation.
type EventType string

const (
	EventLikeCreated    EventType = "like.created"
	EventLikeDeleted    EventType = "like.deleted"
	EventCommentCreated EventType = "comment.created"
	EventPostCreated    EventType = "post.created"
	EventFollowCreated  EventType = "follow.created"
	EventFollowDeleted  EventType = "follow.deleted"
)

// Event is emitted after a remote write succeeds.
type Event struct {
	Type      EventType `json:"type"`
	ActorID   string    `json:"actor_id"`
	SubjectID string    `json:"subject_id"`
	At        time.Time `json:"at"`
}
