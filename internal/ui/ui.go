// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-sights/internal/celnav"
	"github.com/litescript/ls-sights/internal/geopos"
	"github.com/litescript/ls-sights/internal/sight"
	"github.com/litescript/ls-sights/internal/state"
	"github.com/litescript/ls-sights/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewWorksheet ViewMode = iota
	ViewSights
	ViewPlot
	numViews
)

// LookupTimeout bounds a single geographic position lookup.
const LookupTimeout = 30 * time.Second

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// lookupDoneMsg signals a geographic position lookup finished.
	lookupDoneMsg struct {
		body string
		err  error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	ctx      context.Context
	state    *state.Manager
	provider geopos.Provider

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	statusErr bool
	animTick  int
	lookingUp bool

	// Sub-models
	worksheet WorksheetModel
	sights    SightsModel
	plot      PlotModel

	snapshot state.Snapshot
}

// New creates a new root UI model. Lookups run under ctx.
func New(ctx context.Context, stateMgr *state.Manager, provider geopos.Provider) Model {
	m := Model{
		ctx:       ctx,
		state:     stateMgr,
		provider:  provider,
		viewMode:  ViewWorksheet,
		worksheet: NewWorksheetModel(time.Now()),
		sights:    NewSightsModel(),
		plot:      NewPlotModel(),
	}
	m.state.SetSightTime(m.worksheet.SightTime())
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		animTickCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// An open input owns the keyboard.
		if m.viewMode == ViewWorksheet && m.worksheet.Editing() {
			cmds = append(cmds, m.updateActiveView(msg))
			break
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit

		case "1":
			m.viewMode = ViewWorksheet
		case "2":
			m.viewMode = ViewSights
		case "3":
			m.viewMode = ViewPlot

		case "tab":
			// Cycle through views
			m.viewMode = (m.viewMode + 1) % numViews
		case "shift+tab":
			m.viewMode = (m.viewMode + numViews - 1) % numViews

		case "g":
			cmds = append(cmds, m.startLookup())

		case "w":
			m.saveSight()

		case "n":
			if m.viewMode == ViewWorksheet && m.snapshot.EditingID != "" {
				m.state.CloseSight()
				m.setStatus(false, "Worksheet detached, w saves a new sight")
				m.refresh()
				break
			}
			cmds = append(cmds, m.updateActiveView(msg))

		default:
			// Pass to active view
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Header takes 5 lines, footer 2
		contentHeight := msg.Height - 8
		m.worksheet = m.worksheet.SetSize(msg.Width, contentHeight)
		m.sights = m.sights.SetSize(msg.Width, contentHeight)
		m.plot = m.plot.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		m.refresh()

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case lookupDoneMsg:
		m.lookingUp = false
		if msg.err != nil {
			m.setStatus(true, "Lookup failed: %v", msg.err)
		} else {
			m.setStatus(false, "Geographic position of %s updated", msg.body)
		}
		m.refresh()

	case EditFieldMsg:
		if err := m.applyEdit(msg.Field, msg.Value); err != nil {
			m.setStatus(true, "%s: %v", msg.Field, err)
		} else {
			m.statusMsg = ""
		}
		m.refresh()

	case ToggleSightMsg:
		if err := m.state.SetSightActive(msg.ID, msg.Active); err != nil {
			m.setStatus(true, "Update sight: %v", err)
		}
		m.refresh()

	case DeleteSightMsg:
		if err := m.state.DeleteSight(msg.ID); err != nil {
			m.setStatus(true, "Delete sight: %v", err)
		} else {
			m.setStatus(false, "Sight deleted")
		}
		m.refresh()

	case EditSightMsg:
		s, err := m.state.LoadSight(msg.ID)
		if err != nil {
			m.setStatus(true, "Open sight: %v", err)
		} else {
			m.viewMode = ViewWorksheet
			m.setStatus(false, "Editing %s sight, w writes it back", s.Body)
		}
		m.refresh()
		if t := m.snapshot.SightTime; err == nil && !t.IsZero() {
			m.worksheet = m.worksheet.SetSightTime(t)
		m.state.SetSightTime(t)
		}

	case ClearSightsMsg:
		if err := m.state.ClearSights(); err != nil {
			m.setStatus(true, "Delete sights: %v", err)
		} else {
			m.setStatus(false, "All sights deleted")
		}
		m.refresh()

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewWorksheet:
		m.worksheet, cmd = m.worksheet.Update(msg)
	case ViewSights:
		m.sights, cmd = m.sights.Update(msg)
	case ViewPlot:
		m.plot, cmd = m.plot.Update(msg)
	}
	return cmd
}

// refresh pulls a fresh snapshot and sight list into the sub-models.
func (m *Model) refresh() {
	m.snapshot = m.state.Snapshot()
	m.worksheet = m.worksheet.UpdateData(m.snapshot)

	list, err := m.state.Sights()
	if err != nil {
		m.setStatus(true, "List sights: %v", err)
		return
	}
	m.sights = m.sights.UpdateData(list)
	m.plot = m.plot.UpdateData(list, m.snapshot.Position())
}

func (m *Model) setStatus(isErr bool, format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
	m.statusErr = isErr
}

// startLookup fetches the geographic position for the worksheet's body and
// sight time in the background.
func (m *Model) startLookup() tea.Cmd {
	if m.lookingUp {
		return nil
	}
	if m.provider == nil {
		m.setStatus(true, "No lookup provider configured")
		return nil
	}
	body := m.snapshot.Body
	if body == "" {
		m.setStatus(true, "Select a body before looking up its position")
		return nil
	}

	m.lookingUp = true
	m.statusMsg = ""

	ctx, mgr, p, t := m.ctx, m.state, m.provider, m.worksheet.SightTime()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, LookupTimeout)
		defer cancel()
		err := mgr.LookupGeoPosition(ctx, p, t)
		return lookupDoneMsg{body: body, err: err}
	}
}

func (m *Model) saveSight() {
	if m.snapshot.EditingID != "" {
		m.updateSight()
		return
	}
	s, err := m.state.SaveSight()
	switch {
	case errors.Is(err, celnav.ErrInsufficientData):
		m.setStatus(true, "Cannot save: worksheet is incomplete")
	case err != nil:
		m.setStatus(true, "Save failed: %v", err)
	default:
		m.setStatus(false, "Saved %s sight (%.2f nm %s)", s.Body, s.Intercept, s.Direction)
	}
	m.refresh()
}

func (m *Model) updateSight() {
	s, err := m.state.UpdateSight()
	switch {
	case errors.Is(err, celnav.ErrInsufficientData):
		m.setStatus(true, "Cannot update: worksheet is incomplete")
	case err != nil:
		m.setStatus(true, "Update failed: %v", err)
	default:
		m.setStatus(false, "Updated %s sight (%.2f nm %s)", s.Body, s.Intercept, s.Direction)
	}
	m.refresh()
}

// applyEdit parses a committed field value and hands it to the state manager.
func (m *Model) applyEdit(f Field, value string) error {
	switch f {
	case FieldBody:
		if value == "" {
			return errors.New("body name required")
		}
		if b, ok := geopos.LookupBody(value); ok {
			value = b.Name
		}
		m.state.SetBody(value)

	case FieldUTC:
		t, err := geopos.ParseUTC(value)
		if err != nil {
			return err
		}
		m.worksheet = m.worksheet.SetSightTime(t)
		m.state.SetSightTime(t)

	case FieldHs:
		v, err := parseAngle(value, -90, 90)
		if err != nil {
			return err
		}
		m.state.SetHs(v)

	case FieldIC:
		v, err := strconv.ParseFloat(strings.TrimSuffix(value, "'"), 64)
		if err != nil {
			return fmt.Errorf("invalid minutes %q", value)
		}
		m.state.SetIC(v)

	case FieldEyeHeight:
		v, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(value, "ft")))
		if err != nil || v < 0 {
			return fmt.Errorf("invalid height %q", value)
		}
		m.state.SetEyeHeight(v)

	case FieldLimb:
		var l celnav.Limb
		if err := l.UnmarshalText([]byte(value)); err != nil {
			return err
		}
		m.state.SetLimb(l)

	case FieldGHA, FieldDec, FieldDistance:
		return m.applyManualGP(f, value)

	case FieldLat:
		v, err := parseAngle(value, -90, 90)
		if err != nil {
			return err
		}
		m.state.SetLat(v)

	case FieldLon:
		v, err := parseAngle(value, -180, 180)
		if err != nil {
			return err
		}
		m.state.SetLon(v)

	default:
		return fmt.Errorf("unknown field %d", f)
	}
	return nil
}

// applyManualGP enters GHA, declination or distance by hand, for sights
// reduced from a printed almanac.
func (m *Model) applyManualGP(f Field, value string) error {
	if m.snapshot.Body == "" {
		return errors.New("select a body first")
	}

	switch f {
	case FieldGHA:
		v, err := parseAngle(value, 0, 360)
		if err != nil {
			return err
		}
		if v == 360 {
			v = 0
		}
		m.state.SetGHA(v)
	case FieldDec:
		v, err := parseAngle(value, -90, 90)
		if err != nil {
			return err
		}
		m.state.SetDec(v)
	case FieldDistance:
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(value, "km")), 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("invalid distance %q", value)
		}
		m.state.SetDistance(v)
	}
	return nil
}

func parseAngle(s string, lo, hi float64) (float64, error) {
	v, err := celnav.ParseDM(s)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s out of range [%g, %g]", s, lo, hi)
	}
	return v, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewWorksheet:
		content = m.worksheet.View()
	case ViewSights:
		content = m.sights.View()
	case ViewPlot:
		content = m.plot.View()
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	header := m.renderHeader()
	footer := m.renderFooter()

	return header + "\n" + content + "\n" + footer
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs() + "\n"
}

func (m Model) renderLogo() string {
	title := "  ls-sights"
	var b strings.Builder
	b.WriteString("\n")

	runes := []rune(title)
	for col, r := range runes {
		color := gradientColor(col, 0, len(runes), 1)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
		b.WriteString(style.Render(string(r)))
	}

	// Tagline
	b.WriteString(dimStyle.Render(fmt.Sprintf("  Celestial navigation · Sight reduction · v%s", version.Version)))
	b.WriteString("\n\n")

	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient.
// Creates a vibrant nebula effect: blue -> purple -> magenta -> pink
func gradientColor(col, row, width, height int) string {
	// Normalize positions to 0-1
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	// Blue (#3B82F6) -> Purple (#8B5CF6) -> Magenta (#D946EF) -> Pink (#EC4899)
	var r, g, b float64

	if xRatio < 0.33 {
		// Blue to Purple
		t := xRatio / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else if xRatio < 0.66 {
		// Purple to Magenta
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	} else {
		// Magenta to Pink
		t := (xRatio - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	// Vertical fade: brighter at top, darker toward bottom
	brightnessFactor := 1.0 - (yRatio * 0.5)

	return fmt.Sprintf("#%02X%02X%02X",
		clampByte(r*brightnessFactor),
		clampByte(g*brightnessFactor),
		clampByte(b*brightnessFactor))
}

func clampByte(v float64) int {
	return max(0, min(255, int(v)))
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Worksheet", "[2] Sights", "[3] Plot"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	// Animated spinner frames
	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.lookingUp:
		status = accentStyle.Render(spinner) + dimStyle.Render(" looking up "+m.snapshot.Body+"...")
	case m.snapshot.LastError != nil:
		status = errorStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case !m.snapshot.LastLookup.IsZero():
		status = dimStyle.Render(fmt.Sprintf("GP via %s at %s (%s)",
			m.providerName(),
			m.snapshot.LastLookup.Format("15:04:05"),
			m.snapshot.LookupDuration.Round(time.Millisecond)))
	default:
		status = dimStyle.Render("GP via " + m.providerName())
	}

	// View-specific help hints
	var help string
	switch m.viewMode {
	case ViewWorksheet:
		if m.worksheet.Editing() {
			help = "enter: apply | esc: cancel | ctrl+u: clear"
		} else {
			help = "↑↓: field | enter: edit | g: look up GP | w: save sight"
			if m.snapshot.EditingID != "" {
				help = "↑↓: field | enter: edit | g: look up GP | w: update sight | n: new sight"
			}
		}
	case ViewSights:
		help = "↑↓: select | space: plot on/off | e: edit | d: delete | X X: delete all"
	case ViewPlot:
		help = "tab: switch view | q: quit"
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + dimStyle.Render(help)

	if m.statusMsg != "" {
		style := dimStyle
		if m.statusErr {
			style = errorStyle
		}
		footer += "\n  " + style.Render(m.statusMsg)
	}

	return footer
}

func (m Model) providerName() string {
	if m.provider == nil {
		return "manual entry"
	}
	return m.provider.Name()
}

// Snapshot returns the state the UI last rendered.
func (m Model) Snapshot() state.Snapshot {
	return m.snapshot
}

// ViewMode returns the active view.
func (m Model) ViewMode() ViewMode {
	return m.viewMode
}

// Sights returns the sights shown on the Sights view.
func (m Model) Sights() []sight.Sight {
	return m.sights.sights
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}
