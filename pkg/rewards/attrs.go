package rewards

import (
	"github.com/amirasaad/econbot/pkg/domain/platform"
)

// Resolve walks an attribute path such as message__author__id. Each segment
// is looked up through a fixed accessor set per object kind. It reports false
// when any segment is unknown or lands on an absent object.
func (c *EventContext) Resolve(path []string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	v, ok := c.root(path[0])
	for _, seg := range path[1:] {
		if !ok {
			return nil, false
		}
		v, ok = field(v, seg)
	}
	return v, ok
}

func (c *EventContext) root(name string) (any, bool) {
	if _, known := roots[c.Shape][name]; !known {
		return nil, false
	}
	switch c.Shape {
	case ShapeMessage:
		return c.messageRoot(name)
	case ShapeMember:
		return user(c.Member)
	case ShapeReaction:
		return c.reactionRoot(name)
	}
	return nil, false
}

func (c *EventContext) messageRoot(name string) (any, bool) {
	m := c.Message
	original := cached(m)
	switch name {
	case "message":
		return message(m)
	case "author":
		return user(m.Author)
	case "content":
		return m.Content, true
	case "channel":
		return channel(m.Channel)
	case "reply":
		return m.Reference != nil, true
	case "original_message":
		return message(original)
	case "original_author":
		if original == nil {
			return nil, false
		}
		return user(original.Author)
	case "original_content", "original_message_content":
		if original == nil {
			return nil, false
		}
		return original.Content, true
	case "before":
		return message(c.Before)
	}
	return nil, false
}

func (c *EventContext) reactionRoot(name string) (any, bool) {
	switch name {
	case "reaction":
		return reaction(c.Reaction)
	case "author":
		return user(c.User)
	case "message":
		return message(c.Message)
	case "original_author":
		if c.Message == nil {
			return nil, false
		}
		return user(c.Message.Author)
	case "channel":
		if c.Message == nil {
			return nil, false
		}
		return channel(c.Message.Channel)
	}
	return nil, false
}

func field(v any, name string) (any, bool) {
	switch o := v.(type) {
	case *platform.User:
		switch name {
		case "id":
			return o.ID, true
		case "name":
			return o.Name, true
		case "display_name":
			return o.DisplayName, true
		case "bot":
			return o.Bot, true
		}
	case *platform.Channel:
		switch name {
		case "id":
			return o.ID, true
		case "name":
			return o.Name, true
		}
	case *platform.Message:
		switch name {
		case "id":
			return o.ID, true
		case "content":
			return o.Content, true
		case "author":
			return user(o.Author)
		case "channel":
			return channel(o.Channel)
		case "reference":
			return reference(o.Reference)
		case "reply":
			return o.Reference != nil, true
		}
	case *platform.Reaction:
		switch name {
		case "emoji":
			return o.Emoji, true
		case "count":
			return int64(o.Count), true
		case "message":
			return message(o.Message)
		}
	case *platform.Reference:
		switch name {
		case "message_id":
			return o.MessageID, true
		case "message":
			return message(o.Cached)
		}
	}
	return nil, false
}

func cached(m *platform.Message) *platform.Message {
	if m == nil || m.Reference == nil {
		return nil
	}
	return m.Reference.Cached
}

// The constructors below keep typed nil pointers out of interface values.

func user(u *platform.User) (any, bool) {
	if u == nil {
		return nil, false
	}
	return u, true
}

func channel(ch *platform.Channel) (any, bool) {
	if ch == nil {
		return nil, false
	}
	return ch, true
}

func message(m *platform.Message) (any, bool) {
	if m == nil {
		return nil, false
	}
	return m, true
}

func reaction(r *platform.Reaction) (any, bool) {
	if r == nil {
		return nil, false
	}
	return r, true
}

func reference(r *platform.Reference) (any, bool) {
	if r == nil {
		return nil, false
	}
	return r, true
}
