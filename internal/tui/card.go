// Package tui renders an account weather widget as a Bubble Tea terminal card.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/i474232898/account-weather/internal/widget"
)

const (
	toastTTL  = 3 * time.Second
	cardWidth = 44
)

type loadedMsg struct{}

type refreshedMsg struct{ err error }

type toastMsg struct{ n widget.Notification }

type clearToastMsg struct{ seq int }

// channelNotifier hands toasts to the running program without blocking the widget.
type channelNotifier chan widget.Notification

func (c channelNotifier) Notify(_ context.Context, n widget.Notification) {
	select {
	case c <- n:
	default:
	}
}

// Card is the Bubble Tea model.
type Card struct {
	ctx    context.Context
	widget *widget.Widget
	toasts chan widget.Notification

	toast    *widget.Notification
	toastSeq int
	width    int
}

// NewCard mounts a widget for recordID backed by source.
func NewCard(ctx context.Context, recordID string, source widget.DataSource) *Card {
	ch := make(chan widget.Notification, 8)
	return &Card{
		ctx:    ctx,
		widget: widget.New(recordID, source, channelNotifier(ch)),
		toasts: ch,
	}
}

// Widget exposes the bound widget.
func (m *Card) Widget() *widget.Widget {
	return m.widget
}

func (m *Card) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForToast())
}

func (m *Card) load() tea.Cmd {
	return func() tea.Msg {
		m.widget.Load(m.ctx)
		return loadedMsg{}
	}
}

func (m *Card) refresh() tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{err: m.widget.Refresh(m.ctx)}
	}
}

func (m *Card) waitForToast() tea.Cmd {
	return func() tea.Msg {
		select {
		case n := <-m.toasts:
			return toastMsg{n: n}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Card) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.refresh()
		case "u", " ":
			m.widget.SetFahrenheit(m.widget.State().Unit != widget.Fahrenheit)
		}
	case toastMsg:
		n := msg.n
		m.toast = &n
		m.toastSeq++
		seq := m.toastSeq
		return m, tea.Batch(
			tea.Tick(toastTTL, func(time.Time) tea.Msg { return clearToastMsg{seq: seq} }),
			m.waitForToast(),
		)
	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
	}
	return m, nil
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2).
			Width(cardWidth)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	tempStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	successToast = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42")).Padding(0, 1)
	errorToast   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160")).Padding(0, 1)
)

func (m *Card) View() string {
	v := m.widget.View()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Weather"))
	b.WriteString("\n\n")

	switch {
	case v.Loading:
		b.WriteString(mutedStyle.Render("Loading weather data..."))
	case v.HasError:
		b.WriteString(errorStyle.Render(v.ErrorMessage))
	case v.HasWeatherData:
		b.WriteString(tempStyle.Render(v.Temperature))
		if v.City != "" {
			b.WriteString("  " + v.City)
		}
		if v.Description != "" {
			b.WriteString("\n" + v.Description)
		}
	default:
		b.WriteString(mutedStyle.Render("No weather data"))
	}

	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("[%s] °F   r refresh · u toggle · q quit", checkbox(v.Fahrenheit))))

	style := cardStyle
	// Shrink to the terminal, leaving room for the border.
	if m.width > 2 && m.width-2 < cardWidth {
		style = style.Width(m.width - 2)
	}
	out := style.Render(b.String())
	if m.toast != nil {
		toast := successToast
		if m.toast.Severity == widget.SeverityError {
			toast = errorToast
		}
		out += "\n" + toast.Render(m.toast.Title+": "+m.toast.Message)
	}
	return out + "\n"
}

func checkbox(on bool) string {
	if on {
		return "x"
	}
	return " "
}

var _ tea.Model = (*Card)(nil)
