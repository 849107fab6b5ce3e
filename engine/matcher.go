package engine

import "strings"

// ActionPlan is the ordered list of actions a matched event runs.
type ActionPlan struct {
	Actions []Action
}

func (p ActionPlan) Empty() bool { return len(p.Actions) == 0 }

func (p ActionPlan) Kinds() []ActionKind {
	kinds := make([]ActionKind, 0, len(p.Actions))
	for _, a := range p.Actions {
		kinds = append(kinds, a.Kind)
	}
	return kinds
}

// Match decides whether a comment fires rule. Checks run in order and stop
// at the first failure:
//  1. the rule is live
//  2. a specific post scope equals the comment's media id exactly
//  3. a word trigger has at least one word contained in the lowercased text
//
// On success the plan holds the rule's enabled actions in delivery order.
func Match(ev CommentEvent, rule AutomationRule) (ActionPlan, bool) {
	if !rule.IsLive {
		return ActionPlan{}, false
	}
	if !matchScope(rule.Scope, ev.MediaID) {
		return ActionPlan{}, false
	}
	if !matchTrigger(rule.Trigger, ev.Text) {
		return ActionPlan{}, false
	}
	return ActionPlan{Actions: orderedEnabled(rule.Actions)}, true
}

// MatchChatbotComment opens an AI conversation with the commenter: the
// first message followed by a reply generated from the comment text.
func MatchChatbotComment(ev CommentEvent, rule ChatbotRule) (ActionPlan, bool) {
	if !rule.IsLive {
		return ActionPlan{}, false
	}
	if !matchScope(rule.Scope, ev.MediaID) {
		return ActionPlan{}, false
	}
	if !matchTrigger(rule.Trigger, ev.Text) {
		return ActionPlan{}, false
	}
	actions := make([]Action, 0, 2)
	if strings.TrimSpace(rule.FirstMessage) != "" {
		actions = append(actions, OpeningMessage(rule.FirstMessage))
	}
	actions = append(actions, AIReply(rule.Task, rule.Context, ev.Text))
	return ActionPlan{Actions: actions}, true
}

// MatchMessage answers a direct message when the tenant's chatbot is live.
// Messages are not filtered by scope or trigger.
func MatchMessage(ev MessageEvent, rule ChatbotRule) (ActionPlan, bool) {
	if !rule.IsLive {
		return ActionPlan{}, false
	}
	return ActionPlan{Actions: []Action{AIReply(rule.Task, rule.Context, ev.Text)}}, true
}

func matchScope(scope Scope, mediaID string) bool {
	if scope.Kind != ScopeSpecificPost {
		return true
	}
	return scope.PostID == mediaID
}

// matchTrigger uses substring containment, not token matching: "hi"
// matches "this".
func matchTrigger(trigger Trigger, text string) bool {
	if trigger.Kind != TriggerSpecificWords {
		return true
	}
	lower := strings.ToLower(text)
	for _, w := range trigger.Words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
