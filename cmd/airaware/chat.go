package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/airaware/internal/airquality"
	"github.com/mattjoyce/airaware/internal/chat"
)

const locationTimeout = 15 * time.Second

func runChat(args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	var flags clientFlags
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := flags.open()
	if err != nil {
		return err
	}
	defer sess.close()

	ctx, cancel := context.WithTimeout(context.Background(), locationTimeout)
	loc, err := sess.locator.Load(ctx, sess.cfg.City)
	cancel()
	if err != nil {
		return err
	}

	conv := chat.NewConversation(sess.client, sess.mode, loc, sess.logger)
	p := tea.NewProgram(newChatModel(conv, sess.locator, sess.cfg.RequestTimeout), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type snapshotMsg chat.Snapshot

type sendDoneMsg struct {
	Err error
}

type locationMsg struct {
	Loc chat.LocationContext
	Err error
}

type citiesMsg []airquality.City

type chatModel struct {
	conv      *chat.Conversation
	locator   *locator
	timeout   time.Duration
	snapshots chan chat.Snapshot
	snap      chat.Snapshot
	cities    []airquality.City
	switching bool
	notice    string

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	width    int
	height   int
}

var (
	accent      = lipgloss.Color("#38BDF8")
	textColor   = lipgloss.Color("#E0F2FE")
	mutedColor  = lipgloss.Color("#7DD3FC")
	dangerColor = lipgloss.Color("#EF4444")
)

func newChatModel(conv *chat.Conversation, loc *locator, timeout time.Duration) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about air quality..."
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)

	m := chatModel{
		conv:      conv,
		locator:   loc,
		timeout:   timeout,
		snapshots: make(chan chat.Snapshot, 256),
		snap:      conv.Snapshot(),
		input:     ta,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
	}
	conv.SetObserver(func(s chat.Snapshot) { m.snapshots <- s })
	m.setSize(80, 24)
	return m
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		waitForSnapshotCmd(m.snapshots),
		loadCitiesCmd(m.locator),
	)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case snapshotMsg:
		snap := chat.Snapshot(msg)
		if snap.Generation >= m.snap.Generation {
			m.snap = snap
			m.refresh()
		}
		return m, waitForSnapshotCmd(m.snapshots)
	case sendDoneMsg:
		if errors.Is(msg.Err, chat.ErrRequestInFlight) {
			m.notice = "wait for the current reply to finish"
		}
		return m, nil
	case locationMsg:
		m.switching = false
		if msg.Err != nil {
			m.notice = "switch city: " + msg.Err.Error()
		} else {
			m.notice = ""
		}
		m.refresh()
		return m, nil
	case citiesMsg:
		m.cities = msg
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.snap.Waiting() {
			m.refresh()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		return m.submit(m.input.Value(), true)
	case "f1", "f2", "f3":
		actions := chat.QuickActions(m.conv.Mode(), m.conv.Location().City.Name)
		idx := int(msg.String()[1] - '1')
		if idx >= len(actions) {
			return m, nil
		}
		return m.submit(actions[idx].Prompt, false)
	case "tab", "shift+tab":
		if len(m.cities) == 0 || m.switching {
			return m, nil
		}
		step := 1
		if msg.String() == "shift+tab" {
			step = -1
		}
		next := m.cities[nextCityIndex(m.cities, m.conv.Location().City.ID, step)]
		m.switching = true
		m.notice = "loading " + next.Name + "..."
		return m, switchCityCmd(m.conv, m.locator, next.ID)
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a request unless the text is blank or one is already in
// flight. Rejected input stays in the box.
func (m chatModel) submit(text string, fromInput bool) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	if m.snap.State == chat.StateInFlight {
		m.notice = "wait for the current reply to finish"
		return m, nil
	}
	if fromInput {
		m.input.Reset()
	}
	m.notice = ""
	return m, sendCmd(m.conv, text, m.timeout)
}

func (m *chatModel) setSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(max(20, width-4))

	// header (2) + input (3 + border 2) + footer (1) + viewport border (2)
	m.viewport.Width = max(20, width-4)
	m.viewport.Height = max(3, height-10)

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(20, m.viewport.Width-2)),
	)
	if err == nil {
		m.renderer = r
	}
}

func (m *chatModel) refresh() {
	atBottom := m.viewport.AtBottom() || m.viewport.TotalLineCount() == 0
	m.viewport.SetContent(m.renderTurns())
	if atBottom || m.snap.State == chat.StateInFlight {
		m.viewport.GotoBottom()
	}
}

func (m chatModel) renderTurns() string {
	mode := m.conv.Mode()
	city := m.conv.Location().City
	muted := lipgloss.NewStyle().Foreground(mutedColor)

	if len(m.snap.Turns) == 0 && m.snap.State == chat.StateIdle {
		lines := []string{muted.Render(mode.EmptyHint(city.Name)), ""}
		for i, a := range chat.QuickActions(mode, city.Name) {
			lines = append(lines, fmt.Sprintf("%s  %s", lipgloss.NewStyle().Bold(true).Foreground(accent).Render(fmt.Sprintf("F%d", i+1)), a.Label))
		}
		return strings.Join(lines, "\n")
	}

	userLabel := lipgloss.NewStyle().Bold(true).Foreground(accent).Render("You")
	botLabel := lipgloss.NewStyle().Bold(true).Foreground(textColor).Render(mode.Title())
	errStyle := lipgloss.NewStyle().Foreground(dangerColor)
	wrap := lipgloss.NewStyle().Width(max(20, m.viewport.Width-2))

	var b strings.Builder
	for _, turn := range m.snap.Turns {
		switch {
		case turn.Role == chat.RoleUser:
			b.WriteString(userLabel + "\n" + wrap.Render(turn.Content) + "\n\n")
		case strings.HasPrefix(turn.Content, chat.ErrorMarker):
			b.WriteString(errStyle.Render(wrap.Render(turn.Content)) + "\n\n")
		default:
			b.WriteString(botLabel + "\n" + m.renderMarkdown(turn.Content) + "\n\n")
		}
	}
	if m.snap.Waiting() {
		b.WriteString(m.spinner.View() + " " + muted.Render("Analyzing..."))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m chatModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

func (m chatModel) View() string {
	city := m.conv.Location().City
	level := airquality.LevelFor(city.AQI)

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#082F49")).
		Background(accent).
		Padding(0, 1).
		Render(m.conv.Mode().Title())
	badge := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(severityColor(level.Severity)).
		Padding(0, 1).
		Render(fmt.Sprintf("%s · AQI %d · %s", city.Name, city.AQI, level.Label))
	meta := lipgloss.NewStyle().
		Foreground(mutedColor).
		Render(fmt.Sprintf("%s, pop. %s  state=%s", city.State, city.Population, m.snap.State))

	body := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Render(m.viewport.View())
	input := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		Render(m.input.View())

	footer := lipgloss.NewStyle().
		Foreground(mutedColor).
		Render("enter: send  F1-F3: quick actions  tab: next city  pgup/pgdn: scroll  esc: quit")
	if m.notice != "" {
		footer = lipgloss.NewStyle().Foreground(dangerColor).Render(m.notice)
	}

	return strings.Join([]string{title + " " + badge, meta, body, input, footer}, "\n")
}

func severityColor(severity string) lipgloss.Color {
	switch severity {
	case "safe":
		return lipgloss.Color("#16A34A")
	case "moderate":
		return lipgloss.Color("#CA8A04")
	case "warning":
		return lipgloss.Color("#EA580C")
	case "severe":
		return lipgloss.Color("#7E22CE")
	default:
		return dangerColor
	}
}

func nextCityIndex(cities []airquality.City, currentID string, step int) int {
	cur := 0
	for i, c := range cities {
		if c.ID == currentID {
			cur = i
			break
		}
	}
	n := len(cities)
	return ((cur+step)%n + n) % n
}

func waitForSnapshotCmd(in <-chan chat.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-in)
	}
}

func sendCmd(conv *chat.Conversation, text string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return sendDoneMsg{Err: conv.Send(ctx, text)}
	}
}

func switchCityCmd(conv *chat.Conversation, loc *locator, cityID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), locationTimeout)
		defer cancel()
		next, err := loc.Load(ctx, cityID)
		if err != nil {
			return locationMsg{Err: err}
		}
		conv.SwitchLocation(next)
		return locationMsg{Loc: next}
	}
}

func loadCitiesCmd(loc *locator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), locationTimeout)
		defer cancel()
		return citiesMsg(loc.Cities(ctx))
	}
}
