// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/tableside/tableside/lib/api"
	"github.com/tableside/tableside/lib/approval"
	"github.com/tableside/tableside/lib/cart"
	"github.com/tableside/tableside/lib/config"
	"github.com/tableside/tableside/lib/reservation"
	"github.com/tableside/tableside/lib/session"
	"github.com/tableside/tableside/lib/transcript"
)

const (
	requestTimeout = 10 * time.Second
	noticeLifetime = 5 * time.Second
)

// focusRegion identifies which dashboard pane receives navigation
// keys.
type focusRegion int

const (
	focusMenu focusRegion = iota
	focusTables
	focusCart
)

// Params carries the dependencies for a dashboard model. NewPoller is
// a factory rather than an instance: each sidebar open gets a fresh
// poller whose ticker lives exactly as long as the sidebar.
type Params struct {
	Service    Service
	Session    *session.Session
	Cart       *cart.Cart
	Tables     *reservation.View
	Transcript *transcript.Transcript
	NewPoller  func() *approval.Poller
	Config     config.ChatConfig
	Theme      Theme
	Keys       KeyMap
	Logger     *slog.Logger
}

// Model is the root bubbletea model: the restaurant dashboard plus the
// assistant sidebar.
type Model struct {
	service    Service
	session    *session.Session
	cart       *cart.Cart
	tables     *reservation.View
	transcript *transcript.Transcript
	newPoller  func() *approval.Poller
	cfg        config.ChatConfig
	theme      Theme
	keys       KeyMap
	logger     *slog.Logger

	width  int
	height int
	ready  bool

	menu        []api.MenuItem
	menuCursor  int
	tableCursor int
	cartCursor  int
	focus       focusRegion

	contact        textinput.Model
	editingContact bool

	loading bool
	spinner spinner.Model

	chat         chatPane
	chatOpen     bool
	poller       *approval.Poller
	pollerCancel context.CancelFunc

	notice      string
	noticeLevel slog.Level
	noticeSeq   int

	quitting bool
}

// New builds the dashboard model.
func New(params Params) *Model {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}

	contact := textinput.New()
	contact.Placeholder = "phone number"
	contact.CharLimit = 32
	contact.Prompt = "☎ "

	loadSpinner := spinner.New()
	loadSpinner.Spinner = spinner.Dot

	return &Model{
		service:    params.Service,
		session:    params.Session,
		cart:       params.Cart,
		tables:     params.Tables,
		transcript: params.Transcript,
		newPoller:  params.NewPoller,
		cfg:        params.Config,
		theme:      params.Theme,
		keys:       params.Keys,
		logger:     params.Logger,
		contact:    contact,
		loading:    true,
		spinner:    loadSpinner,
		chat:       newChatPane(params.Theme, params.Transcript),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadDataCmd(), m.spinner.Tick, textinput.Blink)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.chat.setSize(m.chatWidth(), m.height-4)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case dataLoadedMsg:
		return m.handleDataLoaded(msg)

	case orderPlacedMsg:
		if msg.err != nil {
			return m, m.setNotice(slog.LevelWarn, msg.err.Error())
		}
		m.contact.SetValue("")
		return m, m.setNotice(slog.LevelInfo,
			fmt.Sprintf("order placed, $%.2f", msg.order.Total))

	case bookResultMsg:
		if msg.err != nil {
			return m, m.setNotice(slog.LevelWarn, msg.err.Error())
		}
		return m, m.setNotice(slog.LevelInfo, "table booked")

	case chatHistoryMsg:
		return m.handleChatHistory(msg)

	case chatReplyMsg:
		return m.handleChatReply(msg)

	case approvalEventMsg:
		return m.handleApprovalEvent(msg)

	case answerResultMsg:
		if msg.err != nil {
			// Re-enable the decision bindings for a retry.
			m.chat.answering = false
			m.chat.refresh()
			return m, m.setNotice(slog.LevelWarn, msg.err.Error())
		}
		// The card stays disabled until a poll reports the question
		// gone; the service owns that transition.
		return m, nil

	case autoscrollMsg:
		if m.chatOpen && m.transcript.ShouldAutoscroll() {
			m.chat.gotoBottom()
		}
		return m, nil

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case logRecordMsg:
		// Routed from LogHandler; don't log again or we loop.
		m.notice = msg.message
		m.noticeLevel = msg.level
		m.noticeSeq++
		return m, noticeExpiryCmd(m.noticeSeq)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Everything else (mouse wheel, blink ticks) belongs to the
	// focused text input or the chat viewport.
	return m.routeResidual(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c quits from anywhere, input focus included.
	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	if m.editingContact {
		return m.handleContactKey(msg)
	}
	if m.chatOpen {
		return m.handleChatKey(msg)
	}
	return m.handleDashboardKey(msg)
}

func (m *Model) handleContactKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), msg.Type == tea.KeyEnter:
		m.editingContact = false
		m.contact.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.contact, cmd = m.contact.Update(msg)
	return m, cmd
}

func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeChat()
		return m, nil

	case key.Matches(msg, m.keys.Approve):
		return m, m.answer(true)

	case key.Matches(msg, m.keys.Reject):
		return m, m.answer(false)

	case key.Matches(msg, m.keys.SendChat):
		return m, m.sendChat()

	case msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown ||
		msg.Type == tea.KeyUp || msg.Type == tea.KeyDown:
		return m, m.chat.handleScroll(msg)
	}

	var cmd tea.Cmd
	m.chat.input, cmd = m.chat.input.Update(msg)
	return m, cmd
}

func (m *Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()

	case key.Matches(msg, m.keys.ToggleChat):
		return m, m.openChat()

	case key.Matches(msg, m.keys.NextPane):
		m.focus = (m.focus + 1) % 3
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.EditContact):
		m.editingContact = true
		return m, m.contact.Focus()

	case key.Matches(msg, m.keys.HourOne):
		m.tables.SetHours(1)
		return m, nil
	case key.Matches(msg, m.keys.HourTwo):
		m.tables.SetHours(2)
		return m, nil
	case key.Matches(msg, m.keys.HourThree):
		m.tables.SetHours(3)
		return m, nil

	case key.Matches(msg, m.keys.BookTable):
		return m, m.bookTableCmd()

	case key.Matches(msg, m.keys.PlaceOrder):
		return m, m.placeOrderCmd(m.contact.Value())
	}

	switch m.focus {
	case focusMenu:
		if key.Matches(msg, m.keys.AddToCart) {
			if item, ok := m.menuAt(m.menuCursor); ok {
				m.cart.Add(item)
			}
		}
	case focusTables:
		if key.Matches(msg, m.keys.SelectTable) {
			if table, ok := m.tableAt(m.tableCursor); ok {
				m.tables.Select(table)
			}
		}
	case focusCart:
		lines := m.cart.Lines()
		if m.cartCursor >= len(lines) {
			break
		}
		line := lines[m.cartCursor]
		switch {
		case key.Matches(msg, m.keys.IncrementLine):
			m.cart.UpdateQuantity(line.MenuItemID, line.Quantity+1)
		case key.Matches(msg, m.keys.DecrementLine):
			m.cart.UpdateQuantity(line.MenuItemID, line.Quantity-1)
		case key.Matches(msg, m.keys.RemoveLine):
			m.cart.Remove(line.MenuItemID)
		}
	}
	return m, nil
}

func (m *Model) handleDataLoaded(msg dataLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.menu != nil {
		m.menu = msg.menu
	}
	if msg.tables != nil {
		m.tables.Replace(msg.tables)
	}
	if msg.orders != nil {
		m.cart.ReplaceOrders(msg.orders)
	}
	if msg.err != nil {
		return m, m.setNotice(slog.LevelError, msg.err.Error())
	}
	return m, nil
}

func (m *Model) handleChatHistory(msg chatHistoryMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.setNotice(slog.LevelWarn, msg.err.Error())
	}
	m.transcript.ReplaceFromServer(msg.messages)
	m.chat.refresh()
	return m, m.maybeAutoscroll()
}

func (m *Model) handleChatReply(msg chatReplyMsg) (tea.Model, tea.Cmd) {
	m.chat.sending = false
	if msg.err != nil {
		// The optimistic entry stays marked as sending; the next
		// history fetch resolves it either way.
		m.chat.refresh()
		return m, m.setNotice(slog.LevelWarn, msg.err.Error())
	}
	m.transcript.AppendAgent(msg.reply)
	m.chat.refresh()
	return m, m.maybeAutoscroll()
}

func (m *Model) handleApprovalEvent(msg approvalEventMsg) (tea.Model, tea.Cmd) {
	// Only the current sidebar's poller is listened to; anything a
	// previous poller left behind is dropped here.
	if m.poller == nil || msg.source != m.poller.Events() {
		return m, nil
	}
	if msg.closed {
		return m, nil
	}

	var cmds []tea.Cmd
	switch msg.event.Kind {
	case approval.QuestionAppeared, approval.QuestionReplaced:
		m.chat.question = msg.event.Question
		m.chat.refresh()
		if cmd := m.maybeAutoscroll(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case approval.QuestionCleared:
		m.chat.question = nil
		m.chat.answering = false
		m.chat.refresh()
	}

	if m.poller != nil {
		cmds = append(cmds, listenApprovalCmd(m.poller.Events()))
	}
	return m, tea.Batch(cmds...)
}

// maybeAutoscroll schedules the deferred bottom jump when the diner is
// at the bottom. The delay lets the viewport re-measure the refreshed
// content first; the gate is checked again when the tick lands.
func (m *Model) maybeAutoscroll() tea.Cmd {
	if !m.transcript.ShouldAutoscroll() {
		return nil
	}
	return autoscrollCmd(m.cfg.AutoscrollDelay)
}

func (m *Model) openChat() tea.Cmd {
	if m.chatOpen {
		return nil
	}
	m.chatOpen = true
	m.chat.setSize(m.chatWidth(), m.height-4)

	ctx, cancel := context.WithCancel(context.Background())
	m.poller = m.newPoller()
	m.pollerCancel = cancel
	go m.poller.Run(ctx)

	return tea.Batch(
		m.chat.input.Focus(),
		m.loadHistoryCmd(),
		listenApprovalCmd(m.poller.Events()),
	)
}

// closeChat tears the sidebar down, its poller included. Reopening
// starts a fresh poller and refetches history.
func (m *Model) closeChat() {
	if !m.chatOpen {
		return
	}
	m.chatOpen = false
	m.chat.input.Blur()
	m.chat.question = nil
	m.chat.answering = false
	if m.pollerCancel != nil {
		m.pollerCancel()
		m.pollerCancel = nil
	}
	m.poller = nil
}

func (m *Model) sendChat() tea.Cmd {
	if m.chat.sending {
		return nil
	}
	message, err := m.transcript.AppendLocal(m.session.Username, m.chat.input.Value())
	if err != nil {
		return m.setNotice(slog.LevelWarn, err.Error())
	}
	m.chat.input.SetValue("")
	m.chat.sending = true
	m.chat.refresh()
	return tea.Batch(m.sendChatCmd(message), m.maybeAutoscroll())
}

func (m *Model) answer(accepted bool) tea.Cmd {
	if m.chat.question == nil || m.chat.answering || m.poller == nil {
		return nil
	}
	m.chat.answering = true
	m.chat.refresh()
	return m.answerCmd(accepted)
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.closeChat()
	return tea.Quit
}

func (m *Model) setNotice(level slog.Level, text string) tea.Cmd {
	m.notice = text
	m.noticeLevel = level
	m.noticeSeq++
	m.logger.Log(context.Background(), level, text)
	return noticeExpiryCmd(m.noticeSeq)
}

func (m *Model) routeResidual(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.editingContact {
		var cmd tea.Cmd
		m.contact, cmd = m.contact.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.chatOpen {
		var cmd tea.Cmd
		m.chat.input, cmd = m.chat.input.Update(msg)
		cmds = append(cmds, cmd)
		if _, isMouse := msg.(tea.MouseMsg); isMouse {
			cmds = append(cmds, m.chat.handleScroll(msg))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) moveCursor(delta int) {
	switch m.focus {
	case focusMenu:
		m.menuCursor = clamp(m.menuCursor+delta, 0, len(m.menu)-1)
	case focusTables:
		m.tableCursor = clamp(m.tableCursor+delta, 0, len(m.tables.Tables())-1)
	case focusCart:
		m.cartCursor = clamp(m.cartCursor+delta, 0, len(m.cart.Lines())-1)
	}
}

func (m *Model) menuAt(index int) (api.MenuItem, bool) {
	if index < 0 || index >= len(m.menu) {
		return api.MenuItem{}, false
	}
	return m.menu[index], true
}

func (m *Model) tableAt(index int) (api.Table, bool) {
	tables := m.tables.Tables()
	if index < 0 || index >= len(tables) {
		return api.Table{}, false
	}
	return tables[index], true
}

func (m *Model) chatWidth() int {
	return max(m.width*2/5, 30)
}

func clamp(value, low, high int) int {
	if high < low {
		return low
	}
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	header := lipgloss.NewStyle().
		Foreground(m.theme.HeaderForeground).
		Bold(true).
		Padding(0, 1).
		Render("Tableside — " + m.session.Username)

	var right string
	if m.chatOpen {
		right = m.chat.view()
	} else {
		right = lipgloss.JoinVertical(lipgloss.Left,
			m.renderCart(),
			m.renderOrders(),
		)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.pane("Menu", m.renderMenu(), m.focus == focusMenu),
		m.pane("Tables", m.renderTables(), m.focus == focusTables),
		right,
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderStatus())
}

func (m *Model) pane(title, content string, focused bool) string {
	border := m.theme.BorderColor
	if focused {
		border = m.theme.HeaderForeground
	}
	titled := lipgloss.NewStyle().Bold(true).
		Foreground(m.theme.HeaderForeground).Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Render(titled + "\n" + content)
}

func (m *Model) renderMenu() string {
	if m.loading {
		return m.spinner.View() + " loading menu"
	}
	if len(m.menu) == 0 {
		return lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("no dishes yet")
	}

	paneWidth := max(m.width/4, 24)
	var rows []string
	for index, item := range m.menu {
		row := fmt.Sprintf("%s  $%.2f",
			ansi.Truncate(item.Name, paneWidth-10, "…"), item.Price)
		rows = append(rows, m.row(row, m.focus == focusMenu && index == m.menuCursor))
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderTables() string {
	tables := m.tables.Tables()
	if len(tables) == 0 {
		return lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("no tables yet")
	}

	selected, hasSelection := m.tables.Selected()
	var rows []string
	for index, table := range tables {
		color := m.theme.TableOccupied
		state := "occupied"
		switch {
		case table.Available:
			color = m.theme.TableAvailable
			state = "free"
		case table.OwnerID == m.session.UserID:
			color = m.theme.TableOwned
			state = "yours"
		}
		marker := " "
		if hasSelection && selected.ID == table.ID {
			marker = "●"
		}
		row := fmt.Sprintf("%s T%-3d %d seats  %s", marker, table.Number, table.Seats,
			lipgloss.NewStyle().Foreground(color).Render(state))
		rows = append(rows, m.row(row, m.focus == focusTables && index == m.tableCursor))
	}

	hours := m.tables.Hours()
	var choices []string
	for _, option := range []int{1, 2, 3} {
		label := fmt.Sprintf("%dh", option)
		if option == hours {
			label = lipgloss.NewStyle().
				Foreground(m.theme.SelectedForeground).
				Background(m.theme.SelectedBackground).
				Render(label)
		}
		choices = append(choices, label)
	}
	rows = append(rows, "", "duration: "+strings.Join(choices, " "))
	return strings.Join(rows, "\n")
}

func (m *Model) renderCart() string {
	lines := m.cart.Lines()
	var rows []string
	if len(lines) == 0 {
		rows = append(rows, lipgloss.NewStyle().
			Foreground(m.theme.FaintText).Render("cart is empty"))
	}
	for index, line := range lines {
		row := fmt.Sprintf("%d× %s  $%.2f", line.Quantity,
			ansi.Truncate(line.Name, 20, "…"), line.Subtotal())
		rows = append(rows, m.row(row, m.focus == focusCart && index == m.cartCursor))
	}
	rows = append(rows, fmt.Sprintf("total $%.2f", m.cart.Total()), m.contact.View())
	return m.pane("Cart", strings.Join(rows, "\n"), m.focus == focusCart)
}

func (m *Model) renderOrders() string {
	orders := m.cart.Orders()
	var rows []string
	if len(orders) == 0 {
		rows = append(rows, lipgloss.NewStyle().
			Foreground(m.theme.FaintText).Render("no orders yet"))
	}
	// Newest last, mirroring the transcript.
	for _, order := range orders {
		status := lipgloss.NewStyle().
			Foreground(m.theme.StatusColor(string(order.Status))).
			Render(string(order.Status))
		rows = append(rows, fmt.Sprintf("$%-7.2f %s", order.Total, status))
	}
	return m.pane("Orders", strings.Join(rows, "\n"), false)
}

func (m *Model) renderStatus() string {
	if m.notice != "" {
		color := m.theme.FaintText
		switch m.noticeLevel {
		case slog.LevelWarn:
			color = m.theme.NoticeWarn
		case slog.LevelError:
			color = m.theme.NoticeError
		}
		return lipgloss.NewStyle().Foreground(color).Padding(0, 1).Render(m.notice)
	}

	help := "tab panes · enter add/select · 1/2/3 hours · b book · n phone · p order · c chat · q quit"
	if m.chatOpen {
		help = "enter send · C-y/C-n decide · esc close chat"
	}
	return lipgloss.NewStyle().Foreground(m.theme.HelpText).Padding(0, 1).
		Render(ansi.Truncate(help, max(m.width-2, 20), "…"))
}

func (m *Model) row(content string, selected bool) string {
	if !selected {
		return lipgloss.NewStyle().Foreground(m.theme.NormalText).Render(content)
	}
	return lipgloss.NewStyle().
		Foreground(m.theme.SelectedForeground).
		Background(m.theme.SelectedBackground).
		Render(content)
}
