package engine

import (
	"sort"
	"strings"
)

// Tenant is the account owner an event is routed to.
type Tenant struct {
	TenantID          string
	PlatformAccountID string
	PageID            string
	APIToken          string
	PageToken         string
}

// Credential returns the token outbound calls use: the page token when
// present, the account token otherwise.
func (t Tenant) Credential() string {
	if strings.TrimSpace(t.PageToken) != "" {
		return t.PageToken
	}
	return t.APIToken
}

type ScopeKind string

const (
	ScopeAnyPost      ScopeKind = "any"
	ScopeSpecificPost ScopeKind = "specific"
)

type Scope struct {
	Kind   ScopeKind
	PostID string
}

func AnyPost() Scope { return Scope{Kind: ScopeAnyPost} }

func SpecificPost(postID string) Scope {
	return Scope{Kind: ScopeSpecificPost, PostID: strings.TrimSpace(postID)}
}

type TriggerKind string

const (
	TriggerAnyComment    TriggerKind = "any"
	TriggerSpecificWords TriggerKind = "specific"
)

type Trigger struct {
	Kind  TriggerKind
	Words []string
}

func AnyComment() Trigger { return Trigger{Kind: TriggerAnyComment} }

// SpecificWords builds a word trigger. Words are trimmed, lowercased and
// deduplicated; empty words are dropped.
func SpecificWords(words ...string) Trigger {
	return Trigger{Kind: TriggerSpecificWords, Words: normalizeWords(words)}
}

func normalizeWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// SplitWords parses a comma separated word list as the configuration API
// accepts it.
func SplitWords(csv string) []string {
	return normalizeWords(strings.Split(csv, ","))
}

type ActionKind string

const (
	ActionOpeningMessage ActionKind = "opening_message"
	ActionLinkMessage    ActionKind = "link_message"
	ActionAutoReply      ActionKind = "auto_reply"
	ActionFollowUp       ActionKind = "follow_up"
	ActionFollowRequest  ActionKind = "follow_request"
	ActionEmailRequest   ActionKind = "email_request"
	ActionAIReply        ActionKind = "ai_reply"
)

// actionOrder is the fixed delivery order. The opening message must reach
// the conversation before anything else.
var actionOrder = map[ActionKind]int{
	ActionOpeningMessage: 0,
	ActionLinkMessage:    1,
	ActionAutoReply:      2,
	ActionFollowUp:       3,
	ActionFollowRequest:  4,
	ActionEmailRequest:   5,
	ActionAIReply:        6,
}

const (
	DefaultAutoReplyText     = "Thanks for your comment! Check your DMs for more info."
	DefaultFollowRequestText = "Hey! Follow me for more updates!"
	DefaultEmailRequestText  = "Want exclusive content? Reply with your email!"
	DefaultAIFallbackText    = "How can I assist you further?"
)

type Action struct {
	Kind    ActionKind
	Enabled bool
	Text    string
	URL     string

	// AI reply inputs.
	Task     string
	Context  string
	UserText string
}

func OpeningMessage(text string) Action {
	return Action{Kind: ActionOpeningMessage, Enabled: true, Text: text}
}

func LinkMessage(text, url string) Action {
	return Action{Kind: ActionLinkMessage, Enabled: true, Text: text, URL: url}
}

func AutoReply(text string) Action {
	return Action{Kind: ActionAutoReply, Enabled: true, Text: text}
}

func FollowUpFlag() Action {
	return Action{Kind: ActionFollowUp, Enabled: true}
}

func FollowRequestMessage(text string) Action {
	return Action{Kind: ActionFollowRequest, Enabled: true, Text: text}
}

func EmailRequestMessage(text string) Action {
	return Action{Kind: ActionEmailRequest, Enabled: true, Text: text}
}

func AIReply(task, context, userText string) Action {
	return Action{Kind: ActionAIReply, Enabled: true, Task: task, Context: context, UserText: userText}
}

// Message is the text sent for a static message action.
func (a Action) Message() string {
	switch a.Kind {
	case ActionLinkMessage:
		// Sent only with both parts.
		text, url := strings.TrimSpace(a.Text), strings.TrimSpace(a.URL)
		if text == "" || url == "" {
			return ""
		}
		return text + "\n\n" + url
	case ActionAutoReply:
		return orDefault(a.Text, DefaultAutoReplyText)
	case ActionFollowRequest:
		return orDefault(a.Text, DefaultFollowRequestText)
	case ActionEmailRequest:
		return orDefault(a.Text, DefaultEmailRequestText)
	}
	return a.Text
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// AutomationRule is a tenant's comment automation. At most one is active
// per tenant.
type AutomationRule struct {
	TenantID string
	// Version changes on every upsert; logged with each run.
	Version int64
	Scope   Scope
	Trigger Trigger
	Actions []Action
	IsLive  bool
}

func (r AutomationRule) Validate() error {
	if err := validateScope(r.Scope); err != nil {
		return err
	}
	if err := validateTrigger(r.Trigger); err != nil {
		return err
	}
	for _, a := range r.Actions {
		if _, ok := actionOrder[a.Kind]; !ok {
			return ValidationError("unknown action kind", map[string]any{"kind": string(a.Kind)})
		}
	}
	return nil
}

// ChatbotRule drives the AI conversation path: a live rule answers every
// direct message and, for comments that pass scope and trigger, opens the
// conversation with FirstMessage.
type ChatbotRule struct {
	TenantID     string
	Version      int64
	Task         string
	Context      string
	FirstMessage string
	Scope        Scope
	Trigger      Trigger
	IsLive       bool
}

func (r ChatbotRule) Validate() error {
	if strings.TrimSpace(r.Task) == "" || strings.TrimSpace(r.Context) == "" {
		return ValidationError("chatbot task and context are required", nil)
	}
	if err := validateScope(r.Scope); err != nil {
		return err
	}
	return validateTrigger(r.Trigger)
}

func validateScope(s Scope) error {
	switch s.Kind {
	case ScopeAnyPost:
		return nil
	case ScopeSpecificPost:
		if strings.TrimSpace(s.PostID) == "" {
			return ValidationError("specific post scope requires a post id", nil)
		}
		return nil
	}
	return ValidationError("unknown scope", map[string]any{"scope": string(s.Kind)})
}

func validateTrigger(t Trigger) error {
	switch t.Kind {
	case TriggerAnyComment:
		return nil
	case TriggerSpecificWords:
		if len(normalizeWords(t.Words)) == 0 {
			return ValidationError("specific words trigger requires at least one word", nil)
		}
		return nil
	}
	return ValidationError("unknown trigger", map[string]any{"trigger": string(t.Kind)})
}

// orderedEnabled returns the enabled actions in delivery order.
func orderedEnabled(actions []Action) []Action {
	out := make([]Action, 0, len(actions))
	for _, a := range actions {
		if a.Enabled {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return actionOrder[out[i].Kind] < actionOrder[out[j].Kind]
	})
	return out
}
