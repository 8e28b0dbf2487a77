package main

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheshgoplani/occtl/internal/config"
	"github.com/asheshgoplani/occtl/internal/tmux"
)

// fakeSessionTmux records tmux calls for the session command tests.
type fakeSessionTmux struct {
	sessions map[string]bool
	list     []tmux.SessionInfo
	sent     [][]string
	created  []string
	windows  []string
	killed   []string
	attached []string
	activity int64
}

func newFakeSessionTmux() *fakeSessionTmux {
	return &fakeSessionTmux{sessions: map[string]bool{}}
}

func (f *fakeSessionTmux) HasSession(name string) (bool, error) {
	return f.sessions[name], nil
}

func (f *fakeSessionTmux) ListSessions() ([]tmux.SessionInfo, error) {
	return f.list, nil
}

func (f *fakeSessionTmux) NewSession(name, workdir string) error {
	f.created = append(f.created, name)
	f.sessions[name] = true
	return nil
}

func (f *fakeSessionTmux) NewWindow(name, window, workdir string) error {
	f.windows = append(f.windows, name+":"+window)
	return nil
}

func (f *fakeSessionTmux) SendKeys(target string, keys ...string) error {
	f.sent = append(f.sent, append([]string{target}, keys...))
	return nil
}

func (f *fakeSessionTmux) KillSession(name string) error {
	f.killed = append(f.killed, name)
	delete(f.sessions, name)
	return nil
}

func (f *fakeSessionTmux) PaneLastActivity(session, window string) (int64, error) {
	return f.activity, nil
}

func (f *fakeSessionTmux) Attach(name string) error {
	f.attached = append(f.attached, name)
	return nil
}

func testStore(t *testing.T) *config.Store {
	t.Helper()
	store, err := config.OpenStoreAt(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunNewCreatesSessionAndFocuses(t *testing.T) {
	store := testStore(t)
	workdir := t.TempDir()
	require.NoError(t, store.SetMapping("api", workdir))
	tm := newFakeSessionTmux()
	var out bytes.Buffer

	rc := runNew(store, tm, &out, "api")

	assert.Equal(t, 0, rc)
	assert.Equal(t, fmt.Sprintf("created+focused: api\tdir=%s\n", workdir), out.String())
	assert.Equal(t, []string{"api"}, tm.created)
	assert.Equal(t, []string{"api:logs", "api:shell"}, tm.windows)
	require.Len(t, tm.sent, 1)
	assert.Equal(t, []string{"api:main", "opencode", "Enter"}, tm.sent[0])
	assert.Equal(t, "api", store.GetFocus())
}

func TestRunNewExistingSessionJustFocuses(t *testing.T) {
	store := testStore(t)
	tm := newFakeSessionTmux()
	tm.sessions["api"] = true
	var out bytes.Buffer

	rc := runNew(store, tm, &out, "api")

	assert.Equal(t, 0, rc)
	assert.Equal(t, "exists+focused: api\n", out.String())
	assert.Empty(t, tm.created)
	assert.Equal(t, "api", store.GetFocus())
}

func TestRunNewUnmappedSession(t *testing.T) {
	store := testStore(t)
	tm := newFakeSessionTmux()
	var out bytes.Buffer

	rc := runNew(store, tm, &out, "api")

	assert.Equal(t, 1, rc)
	assert.Contains(t, out.String(), "No mapping for 'api'")
	assert.Contains(t, out.String(), "occtl map api")
}

func TestRunNewMissingDirectory(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.SetMapping("api", "/nonexistent/path/for/test"))
	tm := newFakeSessionTmux()
	var out bytes.Buffer

	rc := runNew(store, tm, &out, "api")

	assert.Equal(t, 1, rc)
	assert.Contains(t, out.String(), "Mapped directory does not exist")
	assert.Empty(t, tm.created)
}

func TestRunEnsure(t *testing.T) {
	store := testStore(t)
	workdir := t.TempDir()
	require.NoError(t, store.SetMapping("api", workdir))
	tm := newFakeSessionTmux()
	var out bytes.Buffer

	// Missing: behaves like new.
	rc := runEnsure(store, tm, &out, "api")
	assert.Equal(t, 0, rc)
	assert.Contains(t, out.String(), "created+focused: api")

	// Present: focuses only.
	out.Reset()
	rc = runEnsure(store, tm, &out, "api")
	assert.Equal(t, 0, rc)
	assert.Equal(t, "focused: api\n", out.String())
	assert.Equal(t, []string{"api"}, tm.created)
}

func TestRunLs(t *testing.T) {
	tm := newFakeSessionTmux()
	var out bytes.Buffer

	rc := runLs(tm, &out)
	assert.Equal(t, 0, rc)
	assert.Equal(t, "(no tmux sessions)\n", out.String())

	out.Reset()
	tm.list = []tmux.SessionInfo{
		{Name: "api", Attached: true, Windows: 3},
		{Name: "web", Attached: false, Windows: 1},
	}
	rc = runLs(tm, &out)
	assert.Equal(t, 0, rc)
	assert.Equal(t, "api\tattached=1\twindows=3\nweb\tattached=0\twindows=1\n", out.String())
}

func TestRunSay(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.SetFocus("api"))
	tm := newFakeSessionTmux()
	tm.sessions["api"] = true
	var out bytes.Buffer

	rc := runSay(store, tm, &out, "", "run the tests")

	assert.Equal(t, 0, rc)
	assert.Equal(t, "sent: api\trun the tests\n", out.String())
	require.Len(t, tm.sent, 1)
	assert.Equal(t, []string{"api:main", "run the tests", "Enter"}, tm.sent[0])
}

func TestRunSayNoFocus(t *testing.T) {
	store := testStore(t)
	tm := newFakeSessionTmux()
	var out bytes.Buffer

	rc := runSay(store, tm, &out, "", "hello")

	assert.Equal(t, 1, rc)
	assert.Equal(t, "no focused session; run: occtl focus <name>\n", out.String())
}

func TestRunSaySessionNotFound(t *testing.T) {
	store := testStore(t)
	tm := newFakeSessionTmux()
	var out bytes.Buffer

	rc := runSay(store, tm, &out, "ghost", "hello")

	assert.Equal(t, 1, rc)
	assert.Equal(t, "session not found: ghost\n", out.String())
}

func TestRunEnter(t *testing.T) {
	store := testStore(t)
	tm := newFakeSessionTmux()
	tm.sessions["api"] = true
	var out bytes.Buffer

	rc := runEnter(store, tm, &out, "api")

	assert.Equal(t, 0, rc)
	assert.Equal(t, "enter: api\n", out.String())
	require.Len(t, tm.sent, 1)
	assert.Equal(t, []string{"api:main", "Enter"}, tm.sent[0])
}

func TestRunKillClearsFocus(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.SetFocus("api"))
	tm := newFakeSessionTmux()
	tm.sessions["api"] = true
	var out bytes.Buffer

	rc := runKill(store, tm, &out, "")

	assert.Equal(t, 0, rc)
	assert.Equal(t, "killed: api\n", out.String())
	assert.Equal(t, []string{"api"}, tm.killed)
	assert.Empty(t, store.GetFocus())
}

func TestRunKillKeepsUnrelatedFocus(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.SetFocus("web"))
	tm := newFakeSessionTmux()
	tm.sessions["api"] = true
	var out bytes.Buffer

	rc := runKill(store, tm, &out, "api")

	assert.Equal(t, 0, rc)
	assert.Equal(t, "web", store.GetFocus())
}

func TestRunKillNothingFocused(t *testing.T) {
	store := testStore(t)
	tm := newFakeSessionTmux()
	var out bytes.Buffer

	rc := runKill(store, tm, &out, "")

	assert.Equal(t, 1, rc)
	assert.Equal(t, "no session provided and nothing focused\n", out.String())
}

func TestRunStatus(t *testing.T) {
	store := testStore(t)
	workdir := t.TempDir()
	require.NoError(t, store.SetMapping("api", workdir))
	require.NoError(t, store.SetFocus("api"))
	require.NoError(t, store.SetWebhook("https://discord.example/webhook"))
	tm := newFakeSessionTmux()
	tm.sessions["api"] = true
	tm.activity = 0 // unknown activity reads as 0s idle
	var out bytes.Buffer

	rc := runStatus(store, tm, &out, func() string { return "up" })

	assert.Equal(t, 0, rc)
	got := out.String()
	assert.Contains(t, got, "focus:\tapi\n")
	assert.Contains(t, got, "dir:\t"+workdir+"\n")
	assert.Contains(t, got, "webhook:\tset\n")
	assert.Contains(t, got, "alert_router:\t(none)\n")
	assert.Contains(t, got, "relay_token:\t(none)\n")
	assert.Contains(t, got, "relay:\tup\n")
	assert.Contains(t, got, "idle_seconds:\t0\n")
}

func TestRunStatusNothingConfigured(t *testing.T) {
	store := testStore(t)
	tm := newFakeSessionTmux()
	var out bytes.Buffer

	rc := runStatus(store, tm, &out, func() string { return "down" })

	assert.Equal(t, 0, rc)
	got := out.String()
	assert.Contains(t, got, "focus:\t(none)\n")
	assert.Contains(t, got, "dir:\t(n/a)\n")
	assert.Contains(t, got, "relay:\tdown\n")
	assert.Contains(t, got, "idle_seconds:\t(n/a)\n")
}

func TestRunAttachRunningSession(t *testing.T) {
	store := testStore(t)
	tm := newFakeSessionTmux()
	tm.sessions["api"] = true
	var out bytes.Buffer

	rc := runAttach(store, tm, &out, "api", nil)

	assert.Equal(t, 0, rc)
	assert.Equal(t, []string{"api"}, tm.attached)
	assert.Equal(t, "api", store.GetFocus())
}

func TestRunAttachStartsMappedStoppedSession(t *testing.T) {
	store := testStore(t)
	workdir := t.TempDir()
	require.NoError(t, store.SetMapping("api", workdir))
	tm := newFakeSessionTmux()
	var out bytes.Buffer

	rc := runAttach(store, tm, &out, "api", nil)

	assert.Equal(t, 0, rc)
	assert.Equal(t, []string{"api"}, tm.created)
	assert.Equal(t, []string{"api"}, tm.attached)
}

func TestRunAttachUnknownSession(t *testing.T) {
	store := testStore(t)
	tm := newFakeSessionTmux()
	var out bytes.Buffer

	rc := runAttach(store, tm, &out, "ghost", nil)

	assert.Equal(t, 1, rc)
	assert.Equal(t, "session not found: ghost\n", out.String())
	assert.Empty(t, tm.attached)
}

func TestRunAttachPickerCancelled(t *testing.T) {
	store := testStore(t)
	tm := newFakeSessionTmux()
	var out bytes.Buffer

	pick := func(*config.Store, sessionTmux, io.Writer) string { return "" }
	rc := runAttach(store, tm, &out, "", pick)

	assert.Equal(t, 1, rc)
	assert.Equal(t, "attach cancelled\n", out.String())
}

func TestRunAttachUsesPickerChoice(t *testing.T) {
	store := testStore(t)
	tm := newFakeSessionTmux()
	tm.sessions["web"] = true
	var out bytes.Buffer

	pick := func(*config.Store, sessionTmux, io.Writer) string { return "web" }
	rc := runAttach(store, tm, &out, "", pick)

	assert.Equal(t, 0, rc)
	assert.Equal(t, []string{"web"}, tm.attached)
	assert.Equal(t, "web", store.GetFocus())
}
