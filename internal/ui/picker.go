package ui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/asheshgoplani/occtl/internal/logging"
	"github.com/asheshgoplani/occtl/internal/tmux"
)

var uiLog = logging.ForComponent(logging.CompUI)

// PickerRow is one selectable line in the attach picker: a session (mapped,
// live, or both) or the synthetic Exit row.
type PickerRow struct {
	Name     string
	Dir      string
	Running  bool
	Attached bool
	Focused  bool
	Exit     bool
}

// Flags renders the status column for a row.
func (r PickerRow) Flags() string {
	if r.Exit {
		return ""
	}
	var parts []string
	if r.Running {
		parts = append(parts, FlagRunningStyle.Render("RUNNING"))
	} else {
		parts = append(parts, FlagStoppedStyle.Render("STOPPED"))
	}
	if r.Focused {
		parts = append(parts, FlagFocusStyle.Render("FOCUS"))
	}
	if r.Attached {
		parts = append(parts, FlagAttachedStyle.Render("ATTACHED"))
	}
	return strings.Join(parts, " ")
}

// BuildRows merges mapped sessions with live tmux sessions into picker rows.
// Mapped sessions appear even when stopped; live sessions appear even when
// unmapped. Rows are sorted by name with an Exit row appended.
func BuildRows(mappings map[string]string, live []tmux.SessionInfo, focus string) []PickerRow {
	byName := make(map[string]*PickerRow)
	for name, dir := range mappings {
		byName[name] = &PickerRow{Name: name, Dir: dir}
	}
	for _, info := range live {
		row, ok := byName[info.Name]
		if !ok {
			row = &PickerRow{Name: info.Name}
			byName[info.Name] = row
		}
		row.Running = true
		row.Attached = info.Attached
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]PickerRow, 0, len(names)+1)
	for _, name := range names {
		row := *byName[name]
		row.Focused = name == focus && focus != ""
		rows = append(rows, row)
	}
	rows = append(rows, PickerRow{Name: "Exit", Exit: true})
	return rows
}

// rowSource implements fuzzy.Source over picker rows.
type rowSource []PickerRow

func (s rowSource) String(i int) string { return s[i].Name }
func (s rowSource) Len() int            { return len(s) }

// FilterRows returns the rows matching query in fuzzy-match order.
// The Exit row always survives filtering so the picker stays escapable.
func FilterRows(rows []PickerRow, query string) []PickerRow {
	if strings.TrimSpace(query) == "" {
		return rows
	}

	var candidates rowSource
	var exit *PickerRow
	for i := range rows {
		if rows[i].Exit {
			exit = &rows[i]
			continue
		}
		candidates = append(candidates, rows[i])
	}

	matches := fuzzy.FindFrom(query, candidates)
	filtered := make([]PickerRow, 0, len(matches)+1)
	for _, m := range matches {
		filtered = append(filtered, candidates[m.Index])
	}
	if exit != nil {
		filtered = append(filtered, *exit)
	}
	return filtered
}

// CompactPath shortens a home-relative path for display ("~/src/api").
func CompactPath(path string) string {
	if path == "" {
		return ""
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if rel, err := filepath.Rel(home, path); err == nil && !strings.HasPrefix(rel, "..") {
		return "~/" + rel
	}
	return path
}

// storeChangedMsg signals that the config store changed on disk.
type storeChangedMsg struct{}

// themeChangedMsg carries an OS dark-mode flip.
type themeChangedMsg struct{ dark bool }

// LiveReload wires the picker to external change sources. Reload rebuilds the
// row set whenever StoreChanged fires (a nil result keeps the current rows);
// ThemeChanged restyles on OS dark-mode flips. The zero value disables live
// refresh.
type LiveReload struct {
	Reload       func() []PickerRow
	StoreChanged <-chan struct{}
	ThemeChanged <-chan bool
}

func waitForStoreChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func waitForThemeChange(ch <-chan bool) tea.Cmd {
	return func() tea.Msg {
		isDark, ok := <-ch
		if !ok {
			return nil
		}
		return themeChangedMsg{dark: isDark}
	}
}

// PickerModel is the bubbletea model for the interactive attach picker.
type PickerModel struct {
	rows     []PickerRow
	filtered []PickerRow
	input    textinput.Model
	cursor   int
	width    int
	height   int
	live     LiveReload

	// choice holds the selected session name after Enter; empty means
	// the picker was dismissed or Exit was chosen.
	choice string
	done   bool
}

// NewPickerModel creates a picker over the given rows.
func NewPickerModel(rows []PickerRow) *PickerModel {
	ti := textinput.New()
	ti.Placeholder = "Filter sessions..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 40

	return &PickerModel{
		rows:     rows,
		filtered: rows,
		input:    ti,
	}
}

// Choice returns the selected session name, or "" if none was chosen.
func (m *PickerModel) Choice() string {
	return m.choice
}

func (m *PickerModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.live.StoreChanged != nil {
		cmds = append(cmds, waitForStoreChange(m.live.StoreChanged))
	}
	if m.live.ThemeChanged != nil {
		cmds = append(cmds, waitForThemeChange(m.live.ThemeChanged))
	}
	return tea.Batch(cmds...)
}

func (m *PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case storeChangedMsg:
		if m.live.Reload != nil {
			if rows := m.live.Reload(); rows != nil {
				m.rows = rows
				m.refilter()
			}
		}
		if m.live.StoreChanged != nil {
			return m, waitForStoreChange(m.live.StoreChanged)
		}
		return m, nil

	case themeChangedMsg:
		if msg.dark {
			InitTheme("dark")
		} else {
			InitTheme("light")
		}
		if m.live.ThemeChanged != nil {
			return m, waitForThemeChange(m.live.ThemeChanged)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.choice = ""
			m.done = true
			return m, tea.Quit
		case "enter":
			if row, ok := m.Selected(); ok && !row.Exit {
				m.choice = row.Name
			}
			m.done = true
			return m, tea.Quit
		case "up", "ctrl+p":
			m.moveCursor(-1)
			return m, nil
		case "down", "ctrl+n":
			m.moveCursor(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refilter()
	return m, cmd
}

// Selected returns the row under the cursor.
func (m *PickerModel) Selected() (PickerRow, bool) {
	if len(m.filtered) == 0 || m.cursor >= len(m.filtered) {
		return PickerRow{}, false
	}
	return m.filtered[m.cursor], true
}

func (m *PickerModel) moveCursor(delta int) {
	if len(m.filtered) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.filtered)) % len(m.filtered)
}

func (m *PickerModel) refilter() {
	m.filtered = FilterRows(m.rows, m.input.Value())
	if m.cursor >= len(m.filtered) {
		m.cursor = 0
	}
}

func (m *PickerModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Attach to session"))
	b.WriteString("\n\n")
	b.WriteString(FilterBoxStyle.Render(m.input.View()))
	b.WriteString("\n\n")

	nameWidth := m.nameColumnWidth()
	for i, row := range m.filtered {
		b.WriteString(m.renderRow(row, nameWidth, i == m.cursor))
		b.WriteString("\n")
	}
	if len(m.filtered) == 0 {
		b.WriteString(DimStyle.Render("  no matching sessions"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("Enter attach | Esc cancel | ↑/↓ navigate"))
	return b.String()
}

// nameColumnWidth fits the name column to the widest visible name.
func (m *PickerModel) nameColumnWidth() int {
	width := 0
	for _, row := range m.filtered {
		if w := runewidth.StringWidth(row.Name); w > width {
			width = w
		}
	}
	if width < 8 {
		width = 8
	}
	return width
}

func (m *PickerModel) renderRow(row PickerRow, nameWidth int, selected bool) string {
	name := runewidth.FillRight(row.Name, nameWidth)

	var label string
	if row.Exit {
		label = DimStyle.Render(name)
	} else {
		dir := CompactPath(row.Dir)
		if dir == "" {
			dir = DimStyle.Render("(unmapped)")
		} else if m.width > 0 {
			avail := m.width - nameWidth - 24
			if avail > 10 && runewidth.StringWidth(dir) > avail {
				dir = runewidth.Truncate(dir, avail, "...")
			}
		}
		label = fmt.Sprintf("%s  %s  %s", name, row.Flags(), dir)
	}

	if selected {
		return "> " + SelectedRowStyle.Render(label)
	}
	return "  " + NormalRowStyle.Render(label)
}

// RunPicker shows the picker and blocks until the user selects a session or
// dismisses it. Returns the chosen session name, or "" for Exit/cancel.
func RunPicker(rows []PickerRow, live LiveReload) (string, error) {
	model := NewPickerModel(rows)
	model.live = live
	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("picker failed: %w", err)
	}
	m, ok := final.(*PickerModel)
	if !ok {
		return "", fmt.Errorf("picker returned unexpected model")
	}
	if m.choice != "" {
		uiLog.Debug("picker_selected", slog.String("session", m.choice))
	}
	return m.choice, nil
}
