package rewards

import "github.com/amirasaad/econbot/pkg/domain/platform"

// Events maps the `category.kind` pairs usable in a policy to platform event
// ids.
var Events = map[string]map[string]string{
	"member": {
		"join":   platform.MemberJoined,
		"leave":  platform.MemberLeft,
		"ban":    platform.MemberBanned,
		"unban":  platform.MemberUnbanned,
		"update": platform.MemberUpdated,
	},
	"message": {
		"send":   platform.MessagePosted,
		"edit":   platform.MessageEdited,
		"delete": platform.MessageDeleted,
	},
	"reaction": {
		"add":    platform.ReactionAdded,
		"remove": platform.ReactionRemoved,
		"clear":  platform.ReactionsCleared,
	},
}

// Lookup returns the event id for category.kind.
func Lookup(category, kind string) (string, bool) {
	kinds, ok := Events[category]
	if !ok {
		return "", false
	}
	id, ok := kinds[kind]
	return id, ok
}
