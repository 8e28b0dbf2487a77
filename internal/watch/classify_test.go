package watch

import (
	"testing"
	"time"
)

func classify(text string, idle int) Classification {
	return Classify(Snapshot{SessionID: "api", Text: text, IdleSeconds: idle}, DefaultConfig())
}

func TestWaitPromptWinsRegardlessOfIdle(t *testing.T) {
	text := "compiling...\n? Continue (y/n):"

	for _, idle := range []int{0, 45, 90, 100000} {
		c := classify(text, idle)
		if c.Kind != KindWaitingForInput {
			t.Errorf("idle=%d: kind = %s, want waiting_for_input", idle, c.Kind)
		}
	}
}

func TestWaitPromptOrder(t *testing.T) {
	// Both "press enter" and "(y/n)" occur; the earlier pattern wins.
	text := "press enter to continue (y/n)"
	c := classify(text, 0)
	if c.Kind != KindWaitingForInput {
		t.Fatalf("kind = %s, want waiting_for_input", c.Kind)
	}
	if c.Pattern != `press enter` {
		t.Errorf("pattern = %q, want 'press enter'", c.Pattern)
	}
}

func TestWaitPromptCaseInsensitive(t *testing.T) {
	c := classify("USER INPUT REQUIRED", 0)
	if c.Kind != KindWaitingForInput {
		t.Errorf("kind = %s, want waiting_for_input", c.Kind)
	}
	if c.Pattern != `user input required` {
		t.Errorf("pattern = %q", c.Pattern)
	}
}

func TestWholeWordContinue(t *testing.T) {
	cases := []struct {
		text string
		want Kind
	}{
		{"Continue", KindWaitingForInput},
		{"shall we continue now", KindWaitingForInput},
		{"discontinued the run", KindNominal}, // no whole word
	}
	for _, tc := range cases {
		c := classify(tc.text, 0)
		if c.Kind != tc.want {
			t.Errorf("%q: kind = %s, want %s", tc.text, c.Kind, tc.want)
		}
	}
}

func TestStallRequiresIdleCorroboration(t *testing.T) {
	text := "Thinking: Planning research content loading"

	// Below threshold: a stall phrase alone is not trusted.
	c := classify(text, 89)
	if c.Kind == KindStalled {
		t.Error("stall phrase without idleness must not classify as stalled")
	}
	if c.Kind != KindNominal {
		t.Errorf("kind = %s, want nominal", c.Kind)
	}

	// At/above threshold: corroborated.
	c = classify(text, 120)
	if c.Kind != KindStalled {
		t.Fatalf("kind = %s, want stalled", c.Kind)
	}
	if c.Pattern != `thinking:\s+planning` {
		t.Errorf("pattern = %q", c.Pattern)
	}
	if c.IdleSeconds != 120 {
		t.Errorf("idle = %d, want 120", c.IdleSeconds)
	}
}

func TestStallPatternTable(t *testing.T) {
	cases := []struct {
		text    string
		pattern string
	}{
		{"thinking: planning the next step", `thinking:\s+planning`},
		{"Planning phase 3", `planning phase\s+\d+`},
		{"Spawning planner...", `spawning planner\.{0,3}`},
		{"spawning planner", `spawning planner\.{0,3}`},
	}
	for _, tc := range cases {
		c := classify(tc.text, 200)
		if c.Kind != KindStalled {
			t.Errorf("%q: kind = %s, want stalled", tc.text, c.Kind)
			continue
		}
		if c.Pattern != tc.pattern {
			t.Errorf("%q: pattern = %q, want %q", tc.text, c.Pattern, tc.pattern)
		}
	}
}

func TestIdleWithoutPatterns(t *testing.T) {
	text := "some ordinary build output"

	c := classify(text, 45)
	if c.Kind != KindNominal {
		t.Errorf("idle=45: kind = %s, want nominal", c.Kind)
	}
	if c.Alertable() {
		t.Error("nominal must not be alertable")
	}

	c = classify(text, 95)
	if c.Kind != KindIdle {
		t.Errorf("idle=95: kind = %s, want idle", c.Kind)
	}
	if c.IdleSeconds != 95 {
		t.Errorf("idle = %d, want 95", c.IdleSeconds)
	}
	if !c.Alertable() {
		t.Error("idle must be alertable")
	}
}

func TestIdleThresholdBoundary(t *testing.T) {
	text := "quiet output"
	if c := classify(text, DefaultIdleThreshold); c.Kind != KindIdle {
		t.Errorf("idle at threshold: kind = %s, want idle", c.Kind)
	}
	if c := classify(text, DefaultIdleThreshold-1); c.Kind != KindNominal {
		t.Errorf("idle below threshold: kind = %s, want nominal", c.Kind)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	snap := Snapshot{SessionID: "api", Text: "? Continue (y/n):\n\nnoise", IdleSeconds: 30}
	cfg := DefaultConfig()

	first := Classify(snap, cfg)
	second := Classify(snap, cfg)
	if first != second {
		t.Errorf("classification not deterministic: %+v vs %+v", first, second)
	}
}

func TestYesNoPromptNotifiesImmediately(t *testing.T) {
	c := classify("running tests\n? Continue (y/n):", 0)
	if c.Kind != KindWaitingForInput {
		t.Fatalf("kind = %s, want waiting_for_input", c.Kind)
	}
	// \bcontinue\b precedes \(y/n\) in the table, so it is what gets reported.
	if c.Pattern != `\bcontinue\b` {
		t.Errorf("pattern = %q, want \\bcontinue\\b", c.Pattern)
	}
	if c.Evidence != "? Continue (y/n):" {
		t.Errorf("evidence = %q", c.Evidence)
	}
}

func TestPlanningLoopWithIdleReportsStall(t *testing.T) {
	c := classify("starting run\nThinking: Planning research content loading", 120)
	if c.Kind != KindStalled {
		t.Fatalf("kind = %s, want stalled", c.Kind)
	}
	if c.Pattern != `thinking:\s+planning` {
		t.Errorf("pattern = %q", c.Pattern)
	}
	if c.Evidence != "Thinking: Planning research content loading" {
		t.Errorf("evidence = %q", c.Evidence)
	}
}

func TestEmptyCapture(t *testing.T) {
	c := classify("", 0)
	if c.Kind != KindNominal {
		t.Errorf("kind = %s, want nominal", c.Kind)
	}

	c = classify("", 100)
	if c.Kind != KindIdle {
		t.Errorf("kind = %s, want idle", c.Kind)
	}
}

func TestIdleSince(t *testing.T) {
	now := time.Unix(1700000100, 0)

	cases := []struct {
		last int64
		want int
	}{
		{1700000000, 100},
		{1700000100, 0},
		{1700000200, 0}, // clock skew floors at 0
		{0, 0},          // unknown activity
		{-1, 0},
	}
	for _, tc := range cases {
		if got := IdleSince(tc.last, now); got != tc.want {
			t.Errorf("IdleSince(%d) = %d, want %d", tc.last, got, tc.want)
		}
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindNominal:         "nominal",
		KindWaitingForInput: "waiting_for_input",
		KindStalled:         "stalled",
		KindIdle:            "idle",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
