package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-sights/internal/celnav"
	"github.com/litescript/ls-sights/internal/plot"
	"github.com/litescript/ls-sights/internal/report"
	"github.com/litescript/ls-sights/internal/sight"
)

// PlotModel draws the active lines of position.
type PlotModel struct {
	width  int
	height int
	plot   plot.Plot
}

// NewPlotModel creates a new plot view.
func NewPlotModel() PlotModel {
	return PlotModel{}
}

// SetSize updates the viewport size.
func (m PlotModel) SetSize(width, height int) PlotModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData rebuilds the plot from the saved sights and the worksheet's
// assumed position.
func (m PlotModel) UpdateData(sights []sight.Sight, assumed *celnav.Position) PlotModel {
	m.plot = plot.New(sights, assumed)
	return m
}

// Plot returns the current plot.
func (m PlotModel) Plot() plot.Plot {
	return m.plot
}

// Update handles messages.
func (m PlotModel) Update(msg tea.Msg) (PlotModel, tea.Cmd) {
	return m, nil
}

// View renders the plot and its legend.
func (m PlotModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Plot"))
	b.WriteString("\n\n")

	if len(m.plot.Lines) == 0 {
		b.WriteString(labelStyle.Render("No active sights to plot. Save sights on the worksheet or activate them on the Sights view."))
		b.WriteString("\n")
		return b.String()
	}

	// Legend sits beside the canvas.
	legendWidth := 34
	w := m.width - legendWidth - 8
	h := m.height - 4
	if w < 20 {
		w = 20
	}
	if h < 8 {
		h = 8
	}

	canvas := panelStyle.Render(m.plot.RenderASCII(w, h))
	return b.String() + lipgloss.JoinHorizontal(lipgloss.Top, canvas, "  ", m.renderLegend())
}

func (m PlotModel) renderLegend() string {
	var b strings.Builder
	for i, l := range m.plot.Lines {
		b.WriteString(valueStyle.Render(string(plot.LineSymbol(i))))
		b.WriteString(rowStyle.Render(fmt.Sprintf(" %-10s Zn %s", truncate(l.Sight.Body, 10), celnav.FormatDM(l.Sight.Zn, "", "", 0))))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("  %.2f nm %s", l.Sight.Intercept, l.Sight.Direction)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.plot.Assumed != nil {
		b.WriteString(labelStyle.Render("+ AP  "))
		b.WriteString(rowStyle.Render(report.FormatPosition(*m.plot.Assumed)))
		b.WriteString("\n")
	}
	b.WriteString(labelStyle.Render("o intercept points"))
	b.WriteString("\n")
	if m.plot.Fix != nil {
		b.WriteString(labelStyle.Render("X fix "))
		b.WriteString(valueStyle.Render(report.FormatPosition(*m.plot.Fix)))
		b.WriteString("\n")
	} else {
		b.WriteString(labelStyle.Render("Fix needs two crossing lines"))
		b.WriteString("\n")
	}
	return b.String()
}
