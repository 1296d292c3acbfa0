package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-sights/internal/celnav"
	"github.com/litescript/ls-sights/internal/geopos"
	"github.com/litescript/ls-sights/internal/report"
	"github.com/litescript/ls-sights/internal/state"
)

// Field identifies an editable worksheet input.
type Field int

const (
	FieldBody Field = iota
	FieldUTC
	FieldHs
	FieldIC
	FieldEyeHeight
	FieldLimb
	FieldGHA
	FieldDec
	FieldDistance
	FieldLat
	FieldLon
	numFields
)

var fieldLabels = [numFields]string{
	FieldBody:      "Body",
	FieldUTC:       "Time (UTC)",
	FieldHs:        "Hs",
	FieldIC:        "IC (')",
	FieldEyeHeight: "Height of eye",
	FieldLimb:      "Limb",
	FieldGHA:       "GHA",
	FieldDec:       "Dec",
	FieldDistance:  "Distance (km)",
	FieldLat:       "Assumed lat",
	FieldLon:       "Assumed lon",
}

// String returns the field label.
func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fieldLabels[f]
}

// EditFieldMsg carries a committed edit to the root model.
type EditFieldMsg struct {
	Field Field
	Value string
}

// WorksheetModel is the input form and live reduction view.
type WorksheetModel struct {
	width     int
	height    int
	cursor    Field
	editing   bool
	input     []rune
	sightTime time.Time
	snapshot  state.Snapshot
}

// NewWorksheetModel creates a worksheet for a sight taken at t.
func NewWorksheetModel(t time.Time) WorksheetModel {
	return WorksheetModel{sightTime: t.UTC().Truncate(time.Second)}
}

// SetSize updates the viewport size.
func (m WorksheetModel) SetSize(width, height int) WorksheetModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with a new state snapshot.
func (m WorksheetModel) UpdateData(snapshot state.Snapshot) WorksheetModel {
	m.snapshot = snapshot
	return m
}

// SetSightTime sets the time the sight was taken.
func (m WorksheetModel) SetSightTime(t time.Time) WorksheetModel {
	m.sightTime = t.UTC()
	return m
}

// SightTime returns the time the sight was taken.
func (m WorksheetModel) SightTime() time.Time {
	return m.sightTime
}

// Editing reports whether a field is being edited, in which case every key
// belongs to the input.
func (m WorksheetModel) Editing() bool {
	return m.editing
}

// Cursor returns the selected field.
func (m WorksheetModel) Cursor() Field {
	return m.cursor
}

// Update handles messages.
func (m WorksheetModel) Update(msg tea.Msg) (WorksheetModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editing {
		return m.updateEditing(key)
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < numFields-1 {
			m.cursor++
		}
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = numFields - 1
	case "enter", "e":
		if m.cursor == FieldLimb {
			next := (m.snapshot.Reading.Limb + 1) % 3
			return m, editCmd(FieldLimb, next.String())
		}
		m.editing = true
		m.input = []rune(m.fieldValue(m.cursor, true))
	}
	return m, nil
}

func (m WorksheetModel) updateEditing(key tea.KeyMsg) (WorksheetModel, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input = nil
	case tea.KeyEnter:
		m.editing = false
		value := strings.TrimSpace(string(m.input))
		m.input = nil
		return m, editCmd(m.cursor, value)
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyCtrlU:
		m.input = nil
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, key.Runes...)
	}
	return m, nil
}

func editCmd(f Field, value string) tea.Cmd {
	return func() tea.Msg {
		return EditFieldMsg{Field: f, Value: value}
	}
}

// fieldValue renders a field. With raw set, placeholders are dropped so the
// text can be edited directly.
func (m WorksheetModel) fieldValue(f Field, raw bool) string {
	snap := m.snapshot
	none := "—"
	if raw {
		none = ""
	}

	switch f {
	case FieldBody:
		if snap.Body == "" {
			return none
		}
		return snap.Body
	case FieldUTC:
		return m.sightTime.Format(geopos.TimeLayout)
	case FieldHs:
		return celnav.FormatDM(snap.Reading.Hs, "", "", 1)
	case FieldIC:
		return fmt.Sprintf("%+.1f", snap.Reading.IC)
	case FieldEyeHeight:
		if raw {
			return fmt.Sprintf("%d", snap.Reading.EyeHeightFt)
		}
		return fmt.Sprintf("%d ft", snap.Reading.EyeHeightFt)
	case FieldLimb:
		return snap.Reading.Limb.String()
	case FieldGHA:
		if !snap.Entry.HasGHA {
			return none
		}
		return celnav.FormatDM(snap.Entry.GHA, "", "", 1)
	case FieldDec:
		if !snap.Entry.HasDec {
			return none
		}
		return celnav.FormatDM(snap.Entry.Dec, "N", "S", 1)
	case FieldDistance:
		if !snap.Entry.HasDistance {
			return none
		}
		return fmt.Sprintf("%.0f", snap.Entry.Distance)
	case FieldLat:
		if !snap.HasLat {
			return none
		}
		return celnav.FormatDM(snap.Lat, "N", "S", 1)
	case FieldLon:
		if !snap.HasLon {
			return none
		}
		return celnav.FormatDM(snap.Lon, "E", "W", 1)
	}
	return none
}

// View renders the worksheet.
func (m WorksheetModel) View() string {
	left := m.renderInputs()
	right := m.renderResults()
	return lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(left), "  ", panelStyle.Render(right))
}

func (m WorksheetModel) renderInputs() string {
	var b strings.Builder
	title := "Sight"
	if m.snapshot.EditingID != "" {
		title = "Saved sight " + truncate(m.snapshot.EditingID, 8)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	for f := Field(0); f < numFields; f++ {
		label := labelStyle.Render(fmt.Sprintf("%-14s", f.String()))
		var value string
		switch {
		case m.editing && f == m.cursor:
			value = inputStyle.Render(string(m.input) + "█")
		case f == m.cursor:
			value = selectedRowStyle.Render(" " + m.fieldValue(f, false) + " ")
		default:
			value = rowStyle.Render(" " + m.fieldValue(f, false))
		}
		b.WriteString(label + value + "\n")

		// Group the form like a paper sight reduction form.
		if f == FieldLimb || f == FieldDistance {
			b.WriteString("\n")
		}
	}

	if obs := m.snapshot.Observation; obs != nil && obs.UTC != "" {
		b.WriteString(dimStyle.Render("GP for " + obs.UTC))
		b.WriteString("\n")
	}
	if snap := m.snapshot; snap.Entry.HasDec && snap.HasLat {
		v := celnav.VisibilityAt(snap.Lat, snap.Entry.Dec)
		b.WriteString(dimStyle.Render(fmt.Sprintf("%s %s here", displayBody(snap.Body), v)))
	}
	return b.String()
}

func (m WorksheetModel) renderResults() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Reduction"))
	b.WriteString("\n\n")

	snap := m.snapshot
	if !snap.Computable {
		b.WriteString(labelStyle.Render("Need: " + strings.Join(snap.Missing, ", ")))
		b.WriteString("\n")
		return b.String()
	}

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	c := snap.Result.Corrections
	row("Dip", report.FormatMinutes(c.Dip))
	row("Refraction", report.FormatMinutes(c.Refraction))
	row("SD", report.FormatMinutes(c.SD))
	row("HP", report.FormatMinutes(c.HP))
	row("Ho", celnav.FormatDM(c.Ho, "", "", 1))
	b.WriteString("\n")

	r := snap.Result.Reduction
	row("LHA", celnav.FormatDM(r.LHA, "", "", 1))
	row("Hc", celnav.FormatDM(r.Hc, "", "", 1))
	row("Zn", celnav.FormatDM(r.Zn, "", "", 1))
	row("Intercept", report.FormatIntercept(snap.Result.Intercept))
	b.WriteString("\n")

	row("LOP at", report.FormatPosition(snap.Result.LOP.Intercept))
	return b.String()
}

func displayBody(name string) string {
	if name == "" {
		return "Body"
	}
	return name
}
