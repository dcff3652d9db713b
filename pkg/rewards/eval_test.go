package rewards

import (
	"fmt"
	"testing"

	"github.com/amirasaad/econbot/pkg/domain/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = &platform.User{ID: 1, Name: "Alice", DisplayName: "ally"}
	bob   = &platform.User{ID: 2, Name: "bob"}
	bot   = &platform.User{ID: 99, Name: "econbot", Bot: true}
	lobby = &platform.Channel{ID: 10, Name: "lobby"}
)

// compileOne compiles a single rule on event with one condition block.
func compileOne(t *testing.T, event, conditions string) *Rule {
	t.Helper()
	target := "author"
	if event == "member.join" {
		target = "member"
	}
	src := fmt.Sprintf("rule T { on %s if { %s } reward %s gets 1 GC; }", event, conditions, target)
	set, err := Validate(src)
	require.NoError(t, err, src)
	require.Len(t, set.Rules(), 1)
	return set.Rules()[0]
}

func messageCtx(t *testing.T, m *platform.Message) *EventContext {
	t.Helper()
	c, err := NewEventContext(platform.NewMessagePosted(m))
	require.NoError(t, err)
	return c
}

func TestEval_MessageConditions(t *testing.T) {
	original := &platform.Message{ID: 500, Author: bob, Content: "Here is the fix", Channel: lobby}
	reply := &platform.Message{
		ID:        501,
		Author:    alice,
		Content:   "Many THANKS, ty bob!",
		Channel:   lobby,
		Reference: &platform.Reference{MessageID: 500, Cached: original},
	}
	plain := &platform.Message{ID: 502, Author: alice, Content: "typo here", Channel: lobby}

	tests := []struct {
		name string
		cond string
		msg  *platform.Message
		want bool
	}{
		{"contains folds case", `content *= "thanks";`, reply, true},
		{"contains word alias", `content contains "many";`, reply, true},
		{"contains word needs a whole token", `content ~= "ty";`, reply, true},
		{"contains word rejects a substring", `content ~= "ty";`, plain, false},
		{"starts with", `content ^= "many";`, reply, true},
		{"ends with", `content $= "BOB!";`, reply, true},
		{"ends with mismatch", `content ends_with "bob";`, reply, false},
		{"iequals folds case", `author__name |= "ALICE";`, reply, true},
		{"equals is case sensitive", `author__name == "ALICE";`, reply, false},
		{"equals by id", `author__id == 1;`, reply, true},
		{"user against bare id", `author == 1;`, reply, true},
		{"not equals", `author != 1;`, reply, false},
		{"users compare by id", `original_author == original_message__author;`, reply, true},
		{"different users", `author == original_author;`, reply, false},
		{"bool attribute", `author__bot == false;`, reply, true},
		{"not inverts", `not author__bot == true;`, reply, true},
		{"reply flag", `reply == true;`, reply, true},
		{"no reply", `reply == true;`, plain, false},
		{"original content", `original_content *= "fix";`, reply, true},
		{"channel name", `channel__name == "lobby";`, reply, true},
		{"reference id", `message__reference__message_id == 500;`, reply, true},
		{"reference compares as message", `message__reference == original_message;`, reply, true},
		{"unresolved side is false", `original_author__id == 2;`, plain, false},
		{"unresolved side is false under not", `not original_author__id == 2;`, plain, false},
		{"unknown field is unresolved", `author__email == "x";`, reply, false},
		{"numbers compare numerically", `author__id == 1.0;`, reply, true},
		{"type mismatch is unequal", `content == 1;`, reply, false},
		{"left to right without precedence", `content *= "many" or content *= "nope" and content *= "nada";`, reply, false},
		{"and then or", `content *= "nope" and content *= "many" or content *= "bob";`, reply, true},
		{"first true statement wins", `content *= "nope"; content *= "ty";`, reply, true},
		{"no statement holds", `content *= "nope"; content *= "nada";`, reply, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := compileOne(t, "message.send", tt.cond)
			assert.Equal(t, tt.want, r.Matches(messageCtx(t, tt.msg)))
		})
	}
}

func TestEval_MemberAndReaction(t *testing.T) {
	join, err := NewEventContext(platform.NewMemberJoined(bob))
	require.NoError(t, err)
	assert.True(t, compileOne(t, "member.join", `not member__bot == true;`).Matches(join))
	assert.True(t, compileOne(t, "member.join", `member__display_name == "";`).Matches(join))

	botJoin, err := NewEventContext(platform.NewMemberJoined(bot))
	require.NoError(t, err)
	assert.False(t, compileOne(t, "member.join", `not member__bot == true;`).Matches(botJoin))

	msg := &platform.Message{ID: 7, Author: bob, Content: "look", Channel: lobby}
	star, err := NewEventContext(platform.NewReactionAdded(&platform.Reaction{Emoji: "⭐", Count: 3, Message: msg}, alice))
	require.NoError(t, err)

	tests := []struct {
		cond string
		want bool
	}{
		{`reaction__emoji == "⭐";`, true},
		{`reaction__count == 3;`, true},
		{`author == 1;`, true},
		{`original_author == 2;`, true},
		{`not author == original_author;`, true},
		{`channel__name == "lobby";`, true},
		{`message__content == "look";`, true},
		{`reaction__message__author__id == 2;`, true},
	}
	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			assert.Equal(t, tt.want, compileOne(t, "reaction.add", tt.cond).Matches(star))
		})
	}
}

func TestEval_NoConditionsAlwaysMatch(t *testing.T) {
	set, err := Validate(`rule Any { on message.send reward author gets 1 GC; }`)
	require.NoError(t, err)
	assert.True(t, set.Rules()[0].Matches(messageCtx(t, &platform.Message{Author: alice})))
}

func TestResolve(t *testing.T) {
	c := messageCtx(t, &platform.Message{ID: 3, Author: alice, Content: "hi"})

	v, ok := c.Resolve([]string{"author", "display_name"})
	require.True(t, ok)
	assert.Equal(t, "ally", v)

	_, ok = c.Resolve([]string{"channel", "name"})
	assert.False(t, ok, "absent channel")
	_, ok = c.Resolve([]string{"member"})
	assert.False(t, ok, "member is not set on message events")
	_, ok = c.Resolve(nil)
	assert.False(t, ok)
}

func TestNewEventContext_Invalid(t *testing.T) {
	_, err := NewEventContext(&platform.MessageEvent{Kind: platform.MessagePosted})
	assert.Error(t, err)
	_, err = NewEventContext(&platform.MemberEvent{Kind: platform.MemberJoined})
	assert.Error(t, err)
}
