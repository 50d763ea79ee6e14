// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for the askton TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/askton-tui/internal/advisor"
	"github.com/jeranaias/askton-tui/internal/config"
	"github.com/jeranaias/askton-tui/internal/prices"
	"github.com/jeranaias/askton-tui/internal/session"
	"github.com/jeranaias/askton-tui/internal/storage"
	"github.com/jeranaias/askton-tui/internal/turn"
	"github.com/jeranaias/askton-tui/internal/ui/components"
	"github.com/jeranaias/askton-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Styling
	theme *styles.Theme
	keys  KeyMap

	// Dimensions
	width  int
	height int
	ready  bool // viewport initialized after first resize

	// Conversation
	session *session.Session
	client  *advisor.Client
	store   *storage.Store // nil when history is disabled

	// UI components
	viewport   viewport.Model
	input      textinput.Model
	spinner    components.Spinner
	turnList   *components.TurnList
	statusBar  *components.StatusBar
	priceStrip *components.PriceStrip
	prices     *prices.Client

	// Rendering
	cache   *renderCache
	dirty   bool // transcript changed since last accepted frame
	ticking bool // render tick loop active

	// Status
	connected bool
	quitting  bool
}

// New creates a chat model wired to a streaming session.
// store may be nil when conversation history is disabled.
func New(sess *session.Session, client *advisor.Client, store *storage.Store, cfg *config.Config, theme *styles.Theme) Model {
	input := textinput.New()
	input.Placeholder = "Ask about TON..."
	input.Prompt = ""
	input.CharLimit = 2000
	input.Focus()

	turnList := components.NewTurnList(theme)
	turnList.SetMarkdown(cfg.UI.Markdown)

	statusBar := components.NewStatusBar(theme)
	statusBar.ServerURL = cfg.Server.BaseURL

	return Model{
		theme:      theme,
		keys:       DefaultKeyMap(),
		session:    sess,
		client:     client,
		store:      store,
		input:      input,
		spinner:    components.NewSpinner(),
		turnList:   turnList,
		statusBar:  statusBar,
		priceStrip: components.NewPriceStrip(theme),
		prices:     prices.NewClient(cfg.Server.BaseURL),
		cache:      newRenderCache(),
	}
}

// Init starts cursor blinking, the advisor health probe, and the chart fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		checkAdvisorCmd(m.client),
		fetchPriceCmd(m.prices, "TON"),
	)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all Bubble Tea messages for the chat view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TurnChangedMsg:
		m.dirty = true
		if msg.Snapshot.Status.Terminal() {
			// Terminal updates render immediately so the final answer or
			// error is never held back by the frame ticker.
			m.refresh()
			if !m.session.Thinking() {
				m.spinner.Stop()
				m.statusBar.SetStatus(components.StatusReady)
			}
			if m.store != nil {
				cmds = append(cmds, recordTurnCmd(m.store, m.session.ID(), msg.Snapshot))
			}
			return m, tea.Batch(cmds...)
		}
		// A Pending snapshot means the question was accepted but no token
		// has arrived; the thinking status set on submit stays up until
		// the first visible content.
		if msg.Snapshot.Status == turn.StatusStreaming {
			m.statusBar.SetStatus(components.StatusStreaming)
		}
		if !m.ticking {
			m.ticking = true
			cmds = append(cmds, renderTickCmd())
		}
		return m, tea.Batch(cmds...)

	case ScrollToBottomMsg:
		m.viewport.GotoBottom()
		m.statusBar.SetFollowing(m.session.Following())
		return m, nil

	case RenderTickMsg:
		if m.dirty {
			m.refresh()
		}
		if m.session.Thinking() {
			return m, renderTickCmd()
		}
		m.ticking = false
		return m, nil

	case AdvisorStatusMsg:
		m.connected = msg.Running
		m.statusBar.SetConnected(msg.Running)
		return m, nil

	case TurnRecordedMsg:
		// History write failures are non-fatal; the conversation continues.
		return m, nil

	case PriceChartMsg:
		// Fetch failures leave the strip blank; the chart is decoration.
		if msg.Err == nil && len(msg.Points) > 0 {
			m.priceStrip.SetData(msg.Asset, msg.Points)
		}
		return m, nil

	case ConfigReloadedMsg:
		m.turnList.SetMarkdown(msg.Markdown)
		m.dirty = true
		if !m.ticking {
			m.refresh()
		}
		return m, nil
	}

	// Spinner animation frames and everything else.
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey dispatches keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.session.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.handleSubmit()

	case key.Matches(msg, m.keys.Clear):
		m.input.Reset()
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.LineUp(1)
		m.observeScroll()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.LineDown(1)
		m.observeScroll()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		m.observeScroll()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		m.observeScroll()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		m.observeScroll()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit sends the current input as a new question.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	if question == "" {
		return m, nil
	}

	if m.session.Submit(question) == nil {
		return m, nil
	}
	m.input.Reset()
	m.refresh()

	m.statusBar.SetStatus(components.StatusThinking)
	cmds := []tea.Cmd{m.spinner.Start()}
	if !m.ticking {
		m.ticking = true
		cmds = append(cmds, renderTickCmd())
	}
	return m, tea.Batch(cmds...)
}

// handleResize recomputes component dimensions for a new terminal size.
func (m *Model) handleResize(width, height int) {
	m.width = width
	m.height = height

	m.theme.SetSize(width, height)
	m.statusBar.SetWidth(width)
	m.turnList.SetWidth(width)
	m.priceStrip.SetWidth(width)
	m.input.Width = width - 4

	viewportHeight := height - m.chromeHeight()
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = viewportHeight
	}
}

// =============================================================================
// RENDER STATE
// =============================================================================

// refresh re-renders the transcript into the viewport if it changed.
func (m *Model) refresh() {
	if !m.ready {
		return
	}

	snapshots := m.session.Registry().Snapshots()
	m.statusBar.SetTurnCount(len(snapshots))

	content := m.turnList.View(snapshots)
	if m.cache.ShouldUpdate(content) {
		m.viewport.SetContent(content)
		if m.session.Following() {
			m.viewport.GotoBottom()
		}
	}

	m.statusBar.SetFollowing(m.session.Following())
	m.dirty = false
}

// observeScroll reports the viewport position to the follow controller.
func (m *Model) observeScroll() {
	m.session.ObserveScroll(m.viewport.YOffset, m.viewport.TotalLineCount(), m.viewport.Height)
	m.statusBar.SetFollowing(m.session.Following())
}
