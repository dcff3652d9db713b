package rewards

import (
	"fmt"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/platform"
	"github.com/amirasaad/econbot/pkg/eventbus"
)

// Shape tells which fields of an EventContext are populated.
type Shape int

const (
	ShapeMessage Shape = iota + 1
	ShapeMember
	ShapeReaction
)

var shapeByCategory = map[string]Shape{
	"message":  ShapeMessage,
	"member":   ShapeMember,
	"reaction": ShapeReaction,
}

// roots lists the top-level attribute names each shape exposes to
// conditions and reward targets.
var roots = map[Shape]map[string]struct{}{
	ShapeMessage: set("message", "author", "content", "channel", "reply",
		"original_message", "original_author", "original_content",
		"original_message_content", "before"),
	ShapeMember:   set("member"),
	ShapeReaction: set("reaction", "author", "message", "original_author", "channel"),
}

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// EventContext is the view of one platform event that rules evaluate
// against. Only the fields relevant to Shape are set.
type EventContext struct {
	EventID string
	Key     string
	Shape   Shape

	Message *platform.Message
	Before  *platform.Message

	Member *platform.User

	Reaction *platform.Reaction
	User     *platform.User
}

// NewEventContext builds the context for ev.
func NewEventContext(ev eventbus.Event) (*EventContext, error) {
	c := &EventContext{EventID: ev.Type()}
	if k, ok := ev.(eventbus.Keyed); ok {
		c.Key = k.Key()
	}
	switch e := ev.(type) {
	case *platform.MessageEvent:
		if e.Message == nil {
			return nil, fmt.Errorf("%w: %s event without message", domain.ErrValidation, e.Kind)
		}
		c.Shape = ShapeMessage
		c.Message = e.Message
		c.Before = e.Before
	case *platform.MemberEvent:
		if e.Member == nil {
			return nil, fmt.Errorf("%w: %s event without member", domain.ErrValidation, e.Kind)
		}
		c.Shape = ShapeMember
		c.Member = e.Member
	case *platform.ReactionEvent:
		c.Shape = ShapeReaction
		c.Reaction = e.Reaction
		c.User = e.User
		c.Message = e.Message
		if c.Message == nil && e.Reaction != nil {
			c.Message = e.Reaction.Message
		}
	default:
		return nil, fmt.Errorf("%w: unsupported event %T", domain.ErrValidation, ev)
	}
	return c, nil
}

// Author returns the user that caused the event: the message author for
// message events and the reacting user for reaction events.
func (c *EventContext) Author() *platform.User {
	switch c.Shape {
	case ShapeMessage:
		return c.Message.Author
	case ShapeReaction:
		return c.User
	}
	return nil
}
