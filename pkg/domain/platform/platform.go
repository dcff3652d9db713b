// Package platform models the chat-platform objects carried by incoming
// events. Only the fields the economy reads are represented.
package platform

// User is a platform account. Members of a guild are represented as users.
type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Bot         bool   `json:"bot,omitempty"`
}

// Channel is a text channel.
type Channel struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Reference points from a reply to the message it answers. Cached is only
// set when the platform client had the original message at hand.
type Reference struct {
	MessageID int64    `json:"message_id"`
	Cached    *Message `json:"cached_message,omitempty"`
}

// Message is a posted chat message.
type Message struct {
	ID        int64      `json:"id"`
	Author    *User      `json:"author,omitempty"`
	Content   string     `json:"content"`
	Channel   *Channel   `json:"channel,omitempty"`
	Reference *Reference `json:"reference,omitempty"`
}

// Reaction is an emoji reaction on a message.
type Reaction struct {
	Emoji   string   `json:"emoji"`
	Count   int      `json:"count"`
	Message *Message `json:"message,omitempty"`
}
