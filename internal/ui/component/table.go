package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/salebook/internal/ui/style"
)

// Column описывает колонку таблицы
type Column struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// Row is one line of cells. An empty Fg keeps the default text color.
type Row struct {
	Cells []string
	Fg    lipgloss.Color
}

// Table renders rows under a header, optionally highlighting one row and
// windowing long lists around it.
type Table struct {
	columns  []Column
	rows     []Row
	selected int
	height   int // 0: все строки

	headerStyle   lipgloss.Style
	cellStyle     lipgloss.Style
	selectedStyle lipgloss.Style
	borderStyle   lipgloss.Style

	showBorder bool
	selectable bool
}

// NewTable creates a table with the given columns
func NewTable(columns ...Column) *Table {
	palette := style.DefaultPalette()

	return &Table{
		columns: columns,
		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),
		cellStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),
		selectedStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),
		showBorder: true,
	}
}

// Append adds rows in display order
func (t *Table) Append(rows ...Row) *Table {
	t.rows = append(t.rows, rows...)
	return t
}

func (t *Table) SetSelectable(selectable bool) *Table {
	t.selectable = selectable
	return t
}

func (t *Table) SetShowBorder(show bool) *Table {
	t.showBorder = show
	return t
}

// SetHeight limits the number of body rows drawn. Zero draws every row.
func (t *Table) SetHeight(rows int) *Table {
	if rows < 0 {
		rows = 0
	}
	t.height = rows
	return t
}

// Select highlights row index; out of range indexes are ignored.
func (t *Table) Select(index int) *Table {
	if index >= 0 && index < len(t.rows) {
		t.selected = index
	}
	return t
}

func (t *Table) Selected() int {
	return t.selected
}

func (t *Table) Len() int {
	return len(t.rows)
}

// window returns the [from, to) range of rows to draw. The selected row is
// always inside it.
func (t *Table) window() (int, int) {
	n := len(t.rows)
	if t.height == 0 || n <= t.height {
		return 0, n
	}
	from := t.selected - t.height/2
	if from < 0 {
		from = 0
	}
	if from+t.height > n {
		from = n - t.height
	}
	return from, from + t.height
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return "No columns defined"
	}

	var b strings.Builder

	header := make([]string, len(t.columns))
	rule := make([]string, len(t.columns))
	for i, col := range t.columns {
		header[i] = cell(col, col.Header, t.headerStyle)
		rule[i] = strings.Repeat("─", col.Width+2)
	}
	b.WriteString(strings.Join(header, "│"))
	b.WriteString("\n")
	b.WriteString(strings.Join(rule, "┼"))

	from, to := t.window()
	for i := from; i < to; i++ {
		row := t.rows[i]
		st := t.cellStyle
		if row.Fg != "" {
			st = st.Foreground(row.Fg)
		}
		if t.selectable && i == t.selected {
			st = t.selectedStyle
		}

		cells := make([]string, len(t.columns))
		for c, col := range t.columns {
			value := ""
			if c < len(row.Cells) {
				value = row.Cells[c]
			}
			cells[c] = cell(col, value, st)
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(cells, "│"))
	}

	if from > 0 || to < len(t.rows) {
		b.WriteString("\n")
		b.WriteString(style.MutedStyle.Render(fmt.Sprintf("rows %d-%d of %d", from+1, to, len(t.rows))))
	}

	if t.showBorder {
		return t.borderStyle.Render(b.String())
	}
	return b.String()
}

// cell truncates value to the column width; padding adds one cell per side.
func cell(col Column, value string, st lipgloss.Style) string {
	runes := []rune(value)
	if len(runes) > col.Width {
		if col.Width > 3 {
			value = string(runes[:col.Width-3]) + "..."
		} else {
			value = string(runes[:col.Width])
		}
	}
	return st.Width(col.Width + 2).Align(col.Align).Render(value)
}
