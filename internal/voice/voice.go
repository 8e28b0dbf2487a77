// Package voice parses spoken phrases (forwarded by iOS Shortcuts over SSH)
// into occtl intents.
package voice

import (
	"regexp"
	"strings"
)

// Action is what a parsed phrase asks occtl to do.
type Action string

const (
	ActionStatus        Action = "status"
	ActionList          Action = "ls"
	ActionNew           Action = "new"
	ActionFocus         Action = "focus"
	ActionAttachOrFocus Action = "attach_or_focus"
	ActionEnter         Action = "enter"
	ActionSay           Action = "say"
)

// Intent is the parsed result of one voice phrase.
type Intent struct {
	Action  Action
	Session string // target session, "" means the focused one
	Text    string // payload for say
}

const sessionExpr = `[a-zA-Z0-9._:-]+`

var (
	reStatus   = regexp.MustCompile(`^(status|what('?s)?\s+my\s+status)\b`)
	reList     = regexp.MustCompile(`^(list|show)\s+(sessions|tmux|ai)\b`)
	reStart    = regexp.MustCompile(`^start\s+(.+)`)
	reSwitchTo = regexp.MustCompile(`^switch\s+to\s+(.+)`)
	reNew      = regexp.MustCompile(`^(new|create)\s+(session\s+)?(.+)`)
	reAttach   = regexp.MustCompile(`^(attach|open|go\s+to|focus)\s+(.+)`)
	reEnter    = regexp.MustCompile(`^(continue|enter|confirm|submit)$`)
	reTell     = regexp.MustCompile(`(?i)^tell\s+(` + sessionExpr + `)\s+(.+)$`)
)

// Parse maps a phrase to an intent. Unrecognized phrases default to saying
// the whole phrase to the focused session, which keeps the voice path useful
// even when the grammar misses.
func Parse(phrase string) Intent {
	p := strings.TrimSpace(phrase)
	lc := strings.ToLower(p)

	if reStatus.MatchString(lc) {
		return Intent{Action: ActionStatus}
	}
	if reList.MatchString(lc) {
		return Intent{Action: ActionList}
	}
	if m := reStart.FindStringSubmatch(lc); m != nil {
		return Intent{Action: ActionNew, Session: normalizeSession(m[1])}
	}
	if m := reSwitchTo.FindStringSubmatch(lc); m != nil {
		return Intent{Action: ActionFocus, Session: normalizeSession(m[1])}
	}
	if m := reNew.FindStringSubmatch(lc); m != nil {
		return Intent{Action: ActionNew, Session: normalizeSession(m[3])}
	}
	if m := reAttach.FindStringSubmatch(lc); m != nil {
		name := normalizeSession(m[2])
		if m[1] == "focus" {
			return Intent{Action: ActionFocus, Session: name}
		}
		// Attach verbs become focus-only downstream: the Shortcuts SSH
		// channel is non-interactive, the live screen lives in Termius.
		return Intent{Action: ActionAttachOrFocus, Session: name}
	}
	if reEnter.MatchString(lc) {
		return Intent{Action: ActionEnter}
	}
	if m := reTell.FindStringSubmatch(p); m != nil {
		return Intent{Action: ActionSay, Session: m[1], Text: strings.TrimSpace(m[2])}
	}

	return Intent{Action: ActionSay, Text: p}
}

// normalizeSession strips surrounding quotes that dictation sometimes adds.
func normalizeSession(raw string) string {
	value := strings.TrimSpace(raw)
	if len(value) >= 2 {
		if (strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
			(strings.HasPrefix(value, `'`) && strings.HasSuffix(value, `'`)) {
			value = strings.TrimSpace(value[1 : len(value)-1])
		}
	}
	return value
}
