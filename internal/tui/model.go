package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"crypto-live/internal/domain"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const RefreshInterval = 5 * time.Second

// SnapshotSource is the read side of the snapshot slot.
type SnapshotSource interface {
	Current() *domain.Snapshot
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tableBorder = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
)

type tickMsg time.Time

type snapshotMsg struct{ snap *domain.Snapshot }

// Model is one SSH session's view of the market table.
type Model struct {
	source   SnapshotSource
	refresh  time.Duration
	table    table.Model
	snap     *domain.Snapshot
	username string
	width    int
	height   int
}

func NewModel(source SnapshotSource, username string) *Model {
	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(s)

	return &Model{
		source:   source,
		refresh:  RefreshInterval,
		table:    t,
		username: username,
	}
}

func columns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Name", Width: 18},
		{Title: "Symbol", Width: 8},
		{Title: "Price (USD)", Width: 14},
		{Title: "Market Cap", Width: 18},
		{Title: "24h Volume", Width: 16},
		{Title: "24h %", Width: 8},
	}
}

// SetSize fits the table to the terminal; chrome takes six lines.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	if height > 8 {
		m.table.SetHeight(height - 6)
	}
	if width > 0 {
		m.table.SetWidth(width)
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load, m.tick())
}

func (m *Model) load() tea.Msg {
	return snapshotMsg{snap: m.source.Current()}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.load
		}
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	case tickMsg:
		return m, tea.Batch(m.load, m.tick())
	case snapshotMsg:
		m.apply(msg.snap)
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) apply(snap *domain.Snapshot) {
	if snap == nil || (m.snap != nil && m.snap.Sequence == snap.Sequence) {
		return
	}
	m.snap = snap
	m.table.SetRows(rows(snap.Records))
}

func rows(assets []domain.Asset) []table.Row {
	out := make([]table.Row, 0, len(assets))
	for i, a := range assets {
		out = append(out, table.Row{
			strconv.Itoa(i + 1),
			a.Name,
			a.Symbol,
			fmt.Sprintf("%.2f", a.PriceUSD),
			fmt.Sprintf("%.0f", a.MarketCap),
			fmt.Sprintf("%.0f", a.Volume24h),
			fmt.Sprintf("%+.2f", a.Change24hPct),
		})
	}
	return out
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Crypto Live"))
	b.WriteString("\n")
	if m.snap == nil {
		b.WriteString(statusStyle.Render("Waiting for first update..."))
	} else {
		b.WriteString(statusStyle.Render(fmt.Sprintf("Update #%d at %s  (%d assets)",
			m.snap.Sequence, m.snap.Timestamp.Format(domain.TimestampLayout), len(m.snap.Records))))
	}
	b.WriteString("\n")
	b.WriteString(tableBorder.Render(m.table.View()))
	b.WriteString("\n")

	help := "↑/↓ scroll • r refresh • q quit"
	if m.username != "" {
		help = m.username + " • " + help
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}
