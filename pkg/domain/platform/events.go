package platform

import (
	"github.com/amirasaad/econbot/pkg/eventbus"
	"github.com/google/uuid"
)

// Event identifiers delivered by the platform event source.
const (
	MemberJoined   = "member-joined"
	MemberLeft     = "member-left"
	MemberBanned   = "member-banned"
	MemberUnbanned = "member-unbanned"
	MemberUpdated  = "member-updated"

	MessagePosted  = "message-posted"
	MessageEdited  = "message-edited"
	MessageDeleted = "message-deleted"

	ReactionAdded    = "reaction-added"
	ReactionRemoved  = "reaction-removed"
	ReactionsCleared = "reactions-cleared"
)

// MessageEvent is delivered for message-shaped events. Before is only set for
// edits.
type MessageEvent struct {
	ID      uuid.UUID `json:"id"`
	Kind    string    `json:"kind"`
	Message *Message  `json:"message"`
	Before  *Message  `json:"before,omitempty"`
}

func (e *MessageEvent) Type() string { return e.Kind }
func (e *MessageEvent) Key() string  { return eventKey(e.ID) }

// MemberEvent is delivered for member-shaped events.
type MemberEvent struct {
	ID     uuid.UUID `json:"id"`
	Kind   string    `json:"kind"`
	Member *User     `json:"member"`
}

func (e *MemberEvent) Type() string { return e.Kind }
func (e *MemberEvent) Key() string  { return eventKey(e.ID) }

// ReactionEvent is delivered for reaction-shaped events. User is the acting
// user. For ReactionsCleared only Message is set.
type ReactionEvent struct {
	ID       uuid.UUID `json:"id"`
	Kind     string    `json:"kind"`
	Reaction *Reaction `json:"reaction,omitempty"`
	User     *User     `json:"user,omitempty"`
	Message  *Message  `json:"message,omitempty"`
}

func (e *ReactionEvent) Type() string { return e.Kind }
func (e *ReactionEvent) Key() string  { return eventKey(e.ID) }

// NewMessagePosted returns a message-posted event for m.
func NewMessagePosted(m *Message) *MessageEvent {
	return &MessageEvent{ID: uuid.New(), Kind: MessagePosted, Message: m}
}

// NewMemberJoined returns a member-joined event for u.
func NewMemberJoined(u *User) *MemberEvent {
	return &MemberEvent{ID: uuid.New(), Kind: MemberJoined, Member: u}
}

// NewReactionAdded returns a reaction-added event for r made by u.
func NewReactionAdded(r *Reaction, u *User) *ReactionEvent {
	return &ReactionEvent{ID: uuid.New(), Kind: ReactionAdded, Reaction: r, User: u, Message: r.Message}
}

func eventKey(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

// EventTypes maps every event id to a constructor of its payload type. Buses
// that move events across process boundaries decode with it.
var EventTypes = map[string]eventbus.Factory{
	MemberJoined:     func() eventbus.Event { return &MemberEvent{} },
	MemberLeft:       func() eventbus.Event { return &MemberEvent{} },
	MemberBanned:     func() eventbus.Event { return &MemberEvent{} },
	MemberUnbanned:   func() eventbus.Event { return &MemberEvent{} },
	MemberUpdated:    func() eventbus.Event { return &MemberEvent{} },
	MessagePosted:    func() eventbus.Event { return &MessageEvent{} },
	MessageEdited:    func() eventbus.Event { return &MessageEvent{} },
	MessageDeleted:   func() eventbus.Event { return &MessageEvent{} },
	ReactionAdded:    func() eventbus.Event { return &ReactionEvent{} },
	ReactionRemoved:  func() eventbus.Event { return &ReactionEvent{} },
	ReactionsCleared: func() eventbus.Event { return &ReactionEvent{} },
}
