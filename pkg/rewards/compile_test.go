package rewards

import (
	"testing"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/platform"
	"github.com/amirasaad/econbot/pkg/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	src := `
rule Thanks {
    on message.send
    if { content *= "thanks"; }
    reward message__author gets 5 GC;
    reward original_author gets 1 grand, 2 dime;
}
rule Welcome { on member.join reward member gets 10 GC; }
rule MoreThanks { on message.send reward author gets 1 GC; }
`
	set, err := Validate(src)
	require.NoError(t, err)
	assert.Equal(t, src, set.Source())

	rules := set.Rules()
	require.Len(t, rules, 3)
	thanks := rules[0]
	assert.Equal(t, "Thanks", thanks.Name)
	assert.Equal(t, "message.send", thanks.Trigger)
	assert.Equal(t, platform.MessagePosted, thanks.Event)
	assert.Equal(t, ShapeMessage, thanks.Shape)
	require.Len(t, thanks.Rewards, 2)
	assert.Equal(t, Reward{Target: []string{"message", "author"}, Amount: "5 GC"}, thanks.Rewards[0])
	assert.Equal(t, "1 grand, 2 dime", thanks.Rewards[1].Amount)

	byEvent := set.For(platform.MessagePosted)
	require.Len(t, byEvent, 2)
	assert.Equal(t, "Thanks", byEvent[0].Name)
	assert.Equal(t, "MoreThanks", byEvent[1].Name)
	assert.Equal(t, []string{platform.MessagePosted, platform.MemberJoined}, set.Events())
	assert.Empty(t, set.For(platform.ReactionAdded))
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{
			name: "duplicate rule",
			src:  `rule A { on member.join reward member gets 1 GC; } rule A { on member.leave reward member gets 1 GC; }`,
			msg:  "defined more than once",
		},
		{
			name: "unknown kind",
			src:  `rule A { on message.explode reward author gets 1 GC; }`,
			msg:  "unknown event message.explode",
		},
		{
			name: "unknown category",
			src:  `rule A { on guild.create reward author gets 1 GC; }`,
			msg:  "unknown event guild.create",
		},
		{
			name: "attribute of another event",
			src:  `rule A { on member.join if { content *= "x"; } reward member gets 1 GC; }`,
			msg:  "content is not available on member.join events",
		},
		{
			name: "reward target of another event",
			src:  `rule A { on member.join reward author gets 1 GC; }`,
			msg:  "reward target author",
		},
		{
			name: "negative amount",
			src:  `rule A { on member.join reward member gets -1 GC; }`,
			msg:  "reward amount",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Validate(tt.src)
			require.Error(t, err)
			assert.Nil(t, set)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestCompile_ReportsEveryProblem(t *testing.T) {
	_, err := Validate(`
rule A { on message.nope reward author gets 1 GC; }
rule B { on member.join reward author gets 1 GC; }
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rule A")
	assert.Contains(t, err.Error(), "rule B")
}

func TestValidate_ParseError(t *testing.T) {
	_, err := Validate(`rule { }`)
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestValidate_DefaultPolicy(t *testing.T) {
	set, err := Validate(policy.DefaultSource)
	require.NoError(t, err)
	names := make([]string, 0, len(set.Rules()))
	for _, r := range set.Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Thanks", "Welcome", "Kudos"}, names)
}

func TestLookup(t *testing.T) {
	id, ok := Lookup("reaction", "add")
	assert.True(t, ok)
	assert.Equal(t, platform.ReactionAdded, id)
	_, ok = Lookup("reaction", "explode")
	assert.False(t, ok)
	_, ok = Lookup("guild", "add")
	assert.False(t, ok)
}
