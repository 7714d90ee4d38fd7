package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/salebook/internal/format"
	"github.com/rovshanmuradov/salebook/internal/logger"
	"github.com/rovshanmuradov/salebook/internal/salebook"
	"github.com/rovshanmuradov/salebook/internal/ui/style"
)

// SaleQuerier answers the mint query shown by the book view.
type SaleQuerier interface {
	SalesForMint(ctx context.Context, mint solana.PublicKey) (*salebook.QueryResult, error)
}

// SalesLoadedMsg carries the outcome of one query.
type SalesLoadedMsg struct {
	Result *salebook.QueryResult
	Err    error
}

const (
	logLines = 3
	// заголовок, сводка, детали, логи и помощь
	chromeLines = 16
)

// BookModel is the live order book for one mint.
type BookModel struct {
	ctx    context.Context
	engine SaleQuerier
	mint   solana.PublicKey
	logs   *logger.LogBuffer

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	loading   bool
	result    *salebook.QueryResult
	err       error
	showZero  bool
	selected  int
	width     int
	height    int
	updatedAt time.Time
	now       func() time.Time
}

// NewBookModel creates the view. logs may be nil.
func NewBookModel(ctx context.Context, engine SaleQuerier, mint solana.PublicKey, logs *logger.LogBuffer) *BookModel {
	return &BookModel{
		ctx:     ctx,
		engine:  engine,
		mint:    mint,
		logs:    logs,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		loading: true,
		now:     time.Now,
	}
}

// Init starts the first query
func (m *BookModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m *BookModel) fetch() tea.Cmd {
	ctx, engine, mint := m.ctx, m.engine, m.mint
	return func() tea.Msg {
		result, err := engine.SalesForMint(ctx, mint)
		return SalesLoadedMsg{Result: result, Err: err}
	}
}

// Update handles key presses and query results
func (m *BookModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.fetch())
		case key.Matches(msg, m.keys.ToggleZero):
			m.showZero = !m.showZero
			m.clampSelection()
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, m.keys.Down):
			m.selected++
			m.clampSelection()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case SalesLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			// the previous snapshot stays on screen
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.result = msg.Result
		m.updatedAt = m.now()
		m.clampSelection()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *BookModel) clampSelection() {
	n := len(OrderedSales(m.result, m.showZero))
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// tableRows is the number of table rows that fit; 0 before the first resize.
func (m *BookModel) tableRows() int {
	if m.height == 0 {
		return 0
	}
	if rows := m.height - chromeLines; rows > 3 {
		return rows
	}
	return 3
}

// Selected returns the highlighted sale, if any.
func (m *BookModel) Selected() (salebook.ClassifiedSale, bool) {
	sales := OrderedSales(m.result, m.showZero)
	if m.selected < 0 || m.selected >= len(sales) {
		return salebook.ClassifiedSale{}, false
	}
	return sales[m.selected], true
}

// View renders the book
func (m *BookModel) View() string {
	var b strings.Builder

	b.WriteString(style.TitleStyle.Render("Sale book"))
	b.WriteString(" ")
	b.WriteString(style.SubtitleStyle.Render(m.mint.String()))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " Loading sales...")
	case !m.updatedAt.IsZero():
		b.WriteString(style.MutedStyle.Render("Updated " + m.updatedAt.Format("15:04:05")))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(style.ErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	if m.result != nil {
		b.WriteString(RenderSales(m.result, RenderOptions{
			ShowZero:   m.showZero,
			Selectable: true,
			Selected:   m.selected,
			MaxRows:    m.tableRows(),
		}))
		b.WriteString("\n")

		if sale, ok := m.Selected(); ok {
			b.WriteString(renderDetail(sale))
			b.WriteString("\n")
		}
	}

	if m.logs != nil {
		for _, line := range m.logs.GetRecentLogs(logLines) {
			b.WriteString(style.MutedStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func renderDetail(s salebook.ClassifiedSale) string {
	lines := []string{
		fmt.Sprintf("sale     %s", s.Address),
		fmt.Sprintf("seller   %s", s.Seller),
		fmt.Sprintf("account  %s", s.TokenAccount),
		fmt.Sprintf("price    %s SOL (%d lamports)", format.SOL(s.AskPrice), s.AskPrice),
	}
	if s.Degraded && s.DegradedReason != nil {
		lines = append(lines, style.DegradedStyle.Render("delegation unavailable: "+s.DegradedReason.Error()))
	}
	return style.SubtitleStyle.Render(strings.Join(lines, "\n"))
}
