// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/tableside/tableside/lib/api"
	"github.com/tableside/tableside/lib/transcript"
)

// chatPane renders the assistant sidebar: the transcript viewport, the
// input field, and the approval card when a question is live.
type chatPane struct {
	theme      Theme
	transcript *transcript.Transcript

	viewport viewport.Model
	input    textinput.Model

	width  int
	height int

	// question is the single displayed pending question; a newer one
	// replaces it, a poll reporting none removes it.
	question *api.PendingQuestion

	// answering disables the approve/reject bindings while a decision
	// round trip is in flight.
	answering bool

	// sending disables the send binding while a chat round trip is in
	// flight, so one diner message maps to one request.
	sending bool
}

func newChatPane(theme Theme, tr *transcript.Transcript) chatPane {
	input := textinput.New()
	input.Placeholder = "Ask about the menu, your table, your order..."
	input.CharLimit = 500
	input.Prompt = "> "

	return chatPane{
		theme:      theme,
		transcript: tr,
		viewport:   viewport.New(0, 0),
		input:      input,
	}
}

func (p *chatPane) setSize(width, height int) {
	p.width = width
	// One row for the title, one for the input, one separator.
	p.viewport.Width = width
	p.viewport.Height = max(height-3, 1)
	p.height = height
	p.input.Width = max(width-4, 10)
	p.refresh()
}

// refresh rebuilds the viewport content from the transcript and the
// pending question. The scroll offset is preserved; jumping to the
// bottom is the autoscroll tick's decision, not refresh's.
func (p *chatPane) refresh() {
	var b strings.Builder
	for _, message := range p.transcript.Messages() {
		b.WriteString(p.renderMessage(message))
		b.WriteString("\n")
	}
	if p.question != nil {
		b.WriteString(p.renderQuestionCard(*p.question))
		b.WriteString("\n")
	}
	p.viewport.SetContent(b.String())
}

// sampleScroll feeds the viewport's distance from true bottom into the
// transcript's scroll gate. Called after every viewport movement.
func (p *chatPane) sampleScroll() {
	distance := p.viewport.TotalLineCount() - (p.viewport.YOffset + p.viewport.Height)
	if distance < 0 {
		distance = 0
	}
	p.transcript.SetDistanceFromBottom(distance)
}

func (p *chatPane) gotoBottom() {
	p.viewport.GotoBottom()
	p.sampleScroll()
}

func (p *chatPane) handleScroll(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	p.sampleScroll()
	return cmd
}

func (p *chatPane) renderMessage(message transcript.Message) string {
	senderColor := p.theme.OwnMessage
	if message.Sender == api.AgentSender {
		senderColor = p.theme.AgentMessage
	}

	header := lipgloss.NewStyle().Foreground(senderColor).Bold(true).
		Render(ansi.Truncate(message.Sender, max(p.width-10, 8), "…"))
	if message.Optimistic {
		header += lipgloss.NewStyle().Foreground(p.theme.FaintText).Render(" (sending)")
	}

	body := lipgloss.NewStyle().Foreground(p.theme.NormalText).
		Render(ansi.Wordwrap(message.Content, max(p.width-2, 20), " "))
	return header + "\n" + body
}

// renderQuestionCard shows the agent's proposed order with its line
// items, total, contact number, and the decision bindings.
func (p *chatPane) renderQuestionCard(question api.PendingQuestion) string {
	accent := lipgloss.NewStyle().Foreground(p.theme.ApprovalAccent).Bold(true)
	faint := lipgloss.NewStyle().Foreground(p.theme.FaintText)

	var b strings.Builder
	b.WriteString(accent.Render("Confirm this order?"))
	b.WriteString("\n")
	for _, line := range question.Items {
		b.WriteString(fmt.Sprintf("  %d× %s  $%.2f\n",
			line.Quantity,
			ansi.Truncate(line.Name, max(p.width-16, 10), "…"),
			line.Price))
	}
	b.WriteString(fmt.Sprintf("  total $%.2f", question.Total))
	if question.ContactNumber != "" {
		b.WriteString(faint.Render("  · " + question.ContactNumber))
	}
	b.WriteString("\n")
	if p.answering {
		b.WriteString(faint.Render("  sending your decision..."))
	} else {
		b.WriteString(faint.Render("  C-y approve · C-n reject"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.theme.ApprovalAccent).
		Padding(0, 1).
		Width(max(p.width-2, 20)).
		Render(b.String())
}

func (p *chatPane) view() string {
	title := lipgloss.NewStyle().
		Foreground(p.theme.HeaderForeground).
		Bold(true).
		Render("Assistant")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		p.viewport.View(),
		lipgloss.NewStyle().Foreground(p.theme.BorderColor).
			Render(strings.Repeat("─", max(p.width, 1))),
		p.input.View(),
	)
}
