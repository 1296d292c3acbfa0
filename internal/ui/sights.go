package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-sights/internal/celnav"
	"github.com/litescript/ls-sights/internal/sight"
)

// Messages from the sights list to the root model.
type (
	// ToggleSightMsg asks for a sight to be (de)activated.
	ToggleSightMsg struct {
		ID     string
		Active bool
	}

	// DeleteSightMsg asks for a sight to be deleted.
	DeleteSightMsg struct {
		ID string
	}

	// ClearSightsMsg asks for every sight to be deleted.
	ClearSightsMsg struct{}

	// EditSightMsg asks for a sight to be opened on the worksheet.
	EditSightMsg struct {
		ID string
	}
)

// SightsModel lists saved sights.
type SightsModel struct {
	width        int
	height       int
	cursor       int
	sights       []sight.Sight
	confirmClear bool
}

// NewSightsModel creates a new sights list.
func NewSightsModel() SightsModel {
	return SightsModel{}
}

// SetSize updates the viewport size.
func (m SightsModel) SetSize(width, height int) SightsModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData replaces the listed sights, keeping the cursor in range.
func (m SightsModel) UpdateData(sights []sight.Sight) SightsModel {
	m.sights = sights
	if m.cursor >= len(sights) {
		m.cursor = max(len(sights)-1, 0)
	}
	return m
}

// Selected returns the sight under the cursor.
func (m SightsModel) Selected() (sight.Sight, bool) {
	if m.cursor < 0 || m.cursor >= len(m.sights) {
		return sight.Sight{}, false
	}
	return m.sights[m.cursor], true
}

// Update handles messages.
func (m SightsModel) Update(msg tea.Msg) (SightsModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	k := key.String()
	if k != "X" {
		m.confirmClear = false
	}

	switch k {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.sights)-1 {
			m.cursor++
		}
	case "home":
		m.cursor = 0
	case "end":
		if len(m.sights) > 0 {
			m.cursor = len(m.sights) - 1
		}
	case " ", "enter":
		if s, ok := m.Selected(); ok {
			return m, func() tea.Msg { return ToggleSightMsg{ID: s.ID, Active: !s.Active} }
		}
	case "e":
		if s, ok := m.Selected(); ok {
			return m, func() tea.Msg { return EditSightMsg{ID: s.ID} }
		}
	case "d", "delete":
		if s, ok := m.Selected(); ok {
			return m, func() tea.Msg { return DeleteSightMsg{ID: s.ID} }
		}
	case "X":
		if len(m.sights) == 0 {
			return m, nil
		}
		if !m.confirmClear {
			m.confirmClear = true
			return m, nil
		}
		m.confirmClear = false
		return m, func() tea.Msg { return ClearSightsMsg{} }
	}
	return m, nil
}

// View renders the list.
func (m SightsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Saved Sights"))
	b.WriteString(fmt.Sprintf("  %d total, %d plotted\n\n", len(m.sights), len(sight.Active(m.sights))))

	if len(m.sights) == 0 {
		b.WriteString(labelStyle.Render("No saved sights. Press w on the worksheet to save one."))
		b.WriteString("\n")
		return b.String()
	}

	header := fmt.Sprintf("%-3s %-16s %-14s %-10s %-10s %-10s %-16s",
		"", "Taken (UTC)", "Body", "Ho", "Hc", "Zn", "Intercept")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	// Leave room for the title, header and footer hint.
	visible := m.height - 6
	if visible < 3 {
		visible = len(m.sights)
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.sights))

	for i := start; i < end; i++ {
		s := m.sights[i]
		mark := "[ ]"
		if s.Active {
			mark = "[x]"
		}
		taken := s.UTC
		if taken == "" {
			taken = s.CreatedAt.UTC().Format("2006-01-02 15:04")
		}
		line := fmt.Sprintf("%-3s %-16s %-14s %-10s %-10s %-10s %-16s",
			mark,
			truncate(taken, 16),
			truncate(s.Body, 14),
			celnav.FormatDM(s.Ho, "", "", 1),
			celnav.FormatDM(s.Hc, "", "", 1),
			celnav.FormatDM(s.Zn, "", "", 1),
			fmt.Sprintf("%.2f nm %s", s.Intercept, s.Direction),
		)

		switch {
		case i == m.cursor:
			b.WriteString(selectedRowStyle.Render(line))
		case !s.Active:
			b.WriteString(inactiveStyle.Render(line))
		default:
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.confirmClear {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Press X again to delete every sight"))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-1]) + "…"
}
