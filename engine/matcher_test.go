package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveRule(scope Scope, trigger Trigger, actions ...Action) AutomationRule {
	return AutomationRule{TenantID: "t1", Scope: scope, Trigger: trigger, Actions: actions, IsLive: true}
}

func TestMatch_ScenarioA_AnyPostAnyComment(t *testing.T) {
	rule := liveRule(AnyPost(), AnyComment(), OpeningMessage("Hi!"))

	plan, ok := Match(CommentEvent{Text: "nice post", MediaID: "m1"}, rule)
	require.True(t, ok)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, ActionOpeningMessage, plan.Actions[0].Kind)
	assert.Equal(t, "Hi!", plan.Actions[0].Text)
}

func TestMatch_ScenarioB_SpecificPostAndWords(t *testing.T) {
	rule := liveRule(SpecificPost("m1"), SpecificWords("price"), OpeningMessage("see DM"))

	_, ok := Match(CommentEvent{Text: "what is the PRICE?", MediaID: "m1"}, rule)
	assert.True(t, ok, "case-insensitive substring should match")

	_, ok = Match(CommentEvent{Text: "what is the PRICE?", MediaID: "m2"}, rule)
	assert.False(t, ok, "scope mismatch must not match")
}

func TestMatch_NotLiveNeverMatches(t *testing.T) {
	cases := []AutomationRule{
		{Scope: AnyPost(), Trigger: AnyComment()},
		{Scope: SpecificPost("m1"), Trigger: AnyComment()},
		{Scope: AnyPost(), Trigger: SpecificWords("hello")},
	}
	for _, rule := range cases {
		_, ok := Match(CommentEvent{Text: "hello", MediaID: "m1"}, rule)
		assert.False(t, ok)
	}
}

func TestMatch_ScopeMismatchNeverMatches(t *testing.T) {
	rule := liveRule(SpecificPost("p"), AnyComment(), OpeningMessage("x"))
	for _, media := range []string{"", "p2", "P", " p", "pp"} {
		_, ok := Match(CommentEvent{Text: "anything", MediaID: media}, rule)
		assert.False(t, ok, "media %q", media)
	}
}

func TestMatch_TriggerWords(t *testing.T) {
	rule := liveRule(AnyPost(), SpecificWords("Price", "link"), OpeningMessage("x"))

	cases := []struct {
		text string
		want bool
	}{
		{"PRICE please", true},
		{"send the LINK", true},
		{"linkedin?", true},
		{"how much", false},
		{"", false},
	}
	for _, tc := range cases {
		_, ok := Match(CommentEvent{Text: tc.text, MediaID: "m"}, rule)
		assert.Equal(t, tc.want, ok, "text %q", tc.text)
	}
}

func TestMatch_SubstringNotToken(t *testing.T) {
	rule := liveRule(AnyPost(), SpecificWords("hi"), OpeningMessage("x"))
	_, ok := Match(CommentEvent{Text: "this"}, rule)
	assert.True(t, ok)
}

func TestMatch_EmptyWordListNeverMatches(t *testing.T) {
	rule := liveRule(AnyPost(), Trigger{Kind: TriggerSpecificWords}, OpeningMessage("x"))
	_, ok := Match(CommentEvent{Text: "anything"}, rule)
	assert.False(t, ok)
}

func TestMatch_PlanOrderAndDisabledActions(t *testing.T) {
	disabledLink := LinkMessage("shop", "https://example.com")
	disabledLink.Enabled = false

	rule := liveRule(AnyPost(), AnyComment(),
		EmailRequestMessage(""),
		AutoReply(""),
		disabledLink,
		FollowUpFlag(),
		OpeningMessage("hello"),
		FollowRequestMessage(""),
	)

	plan, ok := Match(CommentEvent{Text: "x"}, rule)
	require.True(t, ok)
	assert.Equal(t, []ActionKind{
		ActionOpeningMessage,
		ActionAutoReply,
		ActionFollowUp,
		ActionFollowRequest,
		ActionEmailRequest,
	}, plan.Kinds())
}

func TestMatch_LiveRuleWithoutActionsMatchesEmptyPlan(t *testing.T) {
	plan, ok := Match(CommentEvent{Text: "x"}, liveRule(AnyPost(), AnyComment()))
	assert.True(t, ok)
	assert.True(t, plan.Empty())
}

func TestMatchChatbotComment(t *testing.T) {
	rule := ChatbotRule{
		Task: "booking", Context: "yoga studio", FirstMessage: "Hey there!",
		Scope: AnyPost(), Trigger: SpecificWords("book"), IsLive: true,
	}

	plan, ok := MatchChatbotComment(CommentEvent{Text: "can I BOOK a class?"}, rule)
	require.True(t, ok)
	require.Equal(t, []ActionKind{ActionOpeningMessage, ActionAIReply}, plan.Kinds())
	assert.Equal(t, "can I BOOK a class?", plan.Actions[1].UserText)
	assert.Equal(t, "booking", plan.Actions[1].Task)

	_, ok = MatchChatbotComment(CommentEvent{Text: "nice"}, rule)
	assert.False(t, ok)

	rule.IsLive = false
	_, ok = MatchChatbotComment(CommentEvent{Text: "book"}, rule)
	assert.False(t, ok)
}

func TestMatchMessage_IgnoresScopeAndTrigger(t *testing.T) {
	rule := ChatbotRule{
		Task: "support", Context: "ctx",
		Scope: SpecificPost("p1"), Trigger: SpecificWords("never-said"), IsLive: true,
	}

	plan, ok := MatchMessage(MessageEvent{SenderID: "u1", Text: "hello"}, rule)
	require.True(t, ok)
	require.Len(t, plan.Actions, 1)
	assert.Equal(t, ActionAIReply, plan.Actions[0].Kind)
	assert.Equal(t, "hello", plan.Actions[0].UserText)

	rule.IsLive = false
	_, ok = MatchMessage(MessageEvent{Text: "hello"}, rule)
	assert.False(t, ok)
}

func TestAutomationRule_Validate(t *testing.T) {
	assert.NoError(t, liveRule(AnyPost(), AnyComment()).Validate())
	assert.NoError(t, liveRule(SpecificPost("m1"), SpecificWords("a")).Validate())

	err := liveRule(SpecificPost(" "), AnyComment()).Validate()
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	err = liveRule(AnyPost(), SpecificWords(" ", "")).Validate()
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	err = liveRule(AnyPost(), AnyComment(), Action{Kind: "bogus"}).Validate()
	assert.Error(t, err)
}

func TestAction_Message(t *testing.T) {
	assert.Equal(t, "Shop now\n\nhttps://x.io", LinkMessage("Shop now", "https://x.io").Message())
	assert.Equal(t, "", LinkMessage("", "https://x.io").Message())
	assert.Equal(t, "", LinkMessage("Shop now", " ").Message())
	assert.Equal(t, DefaultAutoReplyText, AutoReply("").Message())
	assert.Equal(t, "custom", AutoReply("custom").Message())
	assert.Equal(t, DefaultFollowRequestText, FollowRequestMessage("").Message())
	assert.Equal(t, DefaultEmailRequestText, EmailRequestMessage(" ").Message())
}

func TestSpecificWords_Normalizes(t *testing.T) {
	tr := SpecificWords(" Price ", "PRICE", "", "Link")
	assert.Equal(t, []string{"price", "link"}, tr.Words)
	assert.Equal(t, []string{"a", "b"}, SplitWords("A, b,,a"))
}

func TestTenant_Credential(t *testing.T) {
	assert.Equal(t, "page", Tenant{APIToken: "api", PageToken: "page"}.Credential())
	assert.Equal(t, "api", Tenant{APIToken: "api"}.Credential())
}
