package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/salebook/internal/format"
	"github.com/rovshanmuradov/salebook/internal/salebook"
	"github.com/rovshanmuradov/salebook/internal/ui/component"
	"github.com/rovshanmuradov/salebook/internal/ui/style"
)

// RenderOptions controls how a query result is drawn.
type RenderOptions struct {
	ShowZero   bool
	Selectable bool
	Selected   int
	MaxRows    int // 0: без ограничения
}

// OrderedSales returns active sales by ascending price, followed by zero
// sales by ascending price when showZero is set. The result is not modified.
func OrderedSales(result *salebook.QueryResult, showZero bool) []salebook.ClassifiedSale {
	if result == nil {
		return nil
	}
	out := append([]salebook.ClassifiedSale(nil), result.Active...)
	salebook.SortByPrice(out)
	if showZero {
		zero := append([]salebook.ClassifiedSale(nil), result.Zero...)
		salebook.SortByPrice(zero)
		out = append(out, zero...)
	}
	return out
}

// RenderSales draws result as a table with a one-line summary.
func RenderSales(result *salebook.QueryResult, opts RenderOptions) string {
	palette := style.DefaultPalette()
	sales := OrderedSales(result, opts.ShowZero)

	var b strings.Builder
	b.WriteString(Summary(result))
	b.WriteString("\n")

	if len(sales) == 0 {
		b.WriteString(style.MutedStyle.Render("No sales to show"))
		return b.String()
	}

	table := component.NewTable(
		component.Column{Header: "#", Width: 3, Align: lipgloss.Right},
		component.Column{Header: "STATUS", Width: 9, Align: lipgloss.Left},
		component.Column{Header: "PRICE SOL", Width: 16, Align: lipgloss.Right},
		component.Column{Header: "DELEGATED", Width: 12, Align: lipgloss.Right},
		component.Column{Header: "SELLER", Width: 11, Align: lipgloss.Left},
		component.Column{Header: "SALE", Width: 11, Align: lipgloss.Left},
	).SetSelectable(opts.Selectable).SetHeight(opts.MaxRows)

	for i, s := range sales {
		status := string(s.Status)
		fg := palette.Zero
		switch {
		case s.Status == salebook.StatusActive:
			fg = palette.Active
		case s.Degraded:
			status = "unknown"
			fg = palette.Degraded
		}
		table.Append(component.Row{
			Cells: []string{
				strconv.Itoa(i + 1),
				status,
				format.SOL(s.AskPrice),
				strconv.FormatUint(s.DelegatedAmount, 10),
				format.ShortAddress(s.Seller.String()),
				format.ShortAddress(s.Address.String()),
			},
			Fg: fg,
		})
	}
	table.Select(opts.Selected)

	b.WriteString(table.View())
	return b.String()
}

// Summary returns the counts line shown above the table.
func Summary(result *salebook.QueryResult) string {
	if result == nil {
		return style.MutedStyle.Render("No result")
	}

	parts := []string{
		style.ActiveStyle.Render(fmt.Sprintf("%d active", len(result.Active))),
		fmt.Sprintf("%d zero", len(result.Zero)),
		fmt.Sprintf("%d closable", len(result.Closable())),
	}
	if n := len(result.DecodeErrors); n > 0 {
		parts = append(parts, style.DegradedStyle.Render(fmt.Sprintf("%d malformed", n)))
	}
	return strings.Join(parts, style.MutedStyle.Render(" · "))
}
