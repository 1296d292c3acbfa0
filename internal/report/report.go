// Package report renders worksheets and saved sights as text and JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-sights/internal/celnav"
	"github.com/litescript/ls-sights/internal/sight"
)

// WorksheetExport is the JSON-serializable representation of a worksheet.
type WorksheetExport struct {
	GeneratedAt time.Time `json:"generated_at"`
	Computable  bool      `json:"computable"`

	Hs          float64     `json:"hs"`
	IC          float64     `json:"ic"`
	EyeHeightFt int         `json:"eye_height_ft"`
	Limb        celnav.Limb `json:"limb"`

	Body     string   `json:"body,omitempty"`
	UTC      string   `json:"utc,omitempty"`
	GHA      *float64 `json:"gha,omitempty"`
	Dec      *float64 `json:"dec,omitempty"`
	Distance *float64 `json:"distance_km,omitempty"`

	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`

	Derived *DerivedExport `json:"derived,omitempty"`
}

// DerivedExport holds the values computed from a complete worksheet.
type DerivedExport struct {
	Dip        float64          `json:"dip"`
	Refraction float64          `json:"refraction"`
	SD         float64          `json:"sd"`
	HP         float64          `json:"hp"`
	Ho         float64          `json:"ho"`
	LHA        float64          `json:"lha"`
	Hc         float64          `json:"hc"`
	Z          float64          `json:"z"`
	Zn         float64          `json:"zn"`
	Intercept  float64          `json:"intercept_nm"`
	Direction  celnav.Direction `json:"direction"`
	LOP        LOPExport        `json:"lop"`
}

// LOPExport is the plotted segment of a line of position.
type LOPExport struct {
	Intercept celnav.Position `json:"intercept"`
	Left      celnav.Position `json:"left"`
	Right     celnav.Position `json:"right"`
}

// ExportWorksheet converts a worksheet and its result to an exportable
// format. Derived values are only included when the worksheet is complete.
func ExportWorksheet(ws celnav.Worksheet, r celnav.Result, generatedAt time.Time) *WorksheetExport {
	export := &WorksheetExport{
		GeneratedAt: generatedAt,
		Computable:  ws.Computable(),
		Hs:          ws.Reading.Hs,
		IC:          ws.Reading.IC,
		EyeHeightFt: ws.Reading.EyeHeightFt,
		Limb:        ws.Reading.Limb,
	}

	if ws.Observation != nil {
		obs := *ws.Observation
		export.Body = obs.Body
		export.UTC = obs.UTC
		export.GHA = &obs.GHA
		export.Dec = &obs.Dec
		export.Distance = &obs.Distance
	}
	if ws.Position != nil {
		pos := *ws.Position
		export.Lat = &pos.Lat
		export.Lon = &pos.Lon
	}

	if export.Computable {
		export.Derived = &DerivedExport{
			Dip:        r.Corrections.Dip,
			Refraction: r.Corrections.Refraction,
			SD:         r.Corrections.SD,
			HP:         r.Corrections.HP,
			Ho:         r.Corrections.Ho,
			LHA:        r.Reduction.LHA,
			Hc:         r.Reduction.Hc,
			Z:          r.Reduction.Z,
			Zn:         r.Reduction.Zn,
			Intercept:  r.Intercept.Distance,
			Direction:  r.Intercept.Direction,
			LOP: LOPExport{
				Intercept: r.LOP.Intercept,
				Left:      r.LOP.Left,
				Right:     r.LOP.Right,
			},
		}
	}
	return export
}

// WriteJSON writes the worksheet as JSON to the given writer.
func (e *WorksheetExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// WriteWorksheet writes the worksheet in the layout of a paper sight form,
// angles in degrees and minutes.
func WriteWorksheet(w io.Writer, ws celnav.Worksheet, r celnav.Result) {
	body := "(no body)"
	if ws.Observation != nil && ws.Observation.Body != "" {
		body = ws.Observation.Body
	}
	fmt.Fprintf(w, "Sight worksheet: %s\n", body)
	fmt.Fprintln(w, strings.Repeat("─", 40))

	row := func(label, value string) {
		fmt.Fprintf(w, "%-14s %s\n", label, value)
	}

	if ws.Observation != nil && ws.Observation.UTC != "" {
		row("UTC", ws.Observation.UTC)
	}
	row("Hs", celnav.FormatDM(ws.Reading.Hs, "", "", 1))
	row("IC", FormatMinutes(ws.Reading.IC))
	row("Eye height", fmt.Sprintf("%d ft", ws.Reading.EyeHeightFt))
	row("Limb", ws.Reading.Limb.String())

	if ws.Observation != nil {
		fmt.Fprintln(w)
		row("GHA", celnav.FormatDM(ws.Observation.GHA, "", "", 1))
		row("Dec", celnav.FormatDM(ws.Observation.Dec, "N", "S", 1))
	}
	if ws.Position != nil {
		row("Lat", celnav.FormatDM(ws.Position.Lat, "N", "S", 1))
		row("Lon", celnav.FormatDM(ws.Position.Lon, "E", "W", 1))
	}

	if !ws.Computable() {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Insufficient data: %s\n", strings.Join(Missing(ws), ", "))
		return
	}

	c := r.Corrections
	fmt.Fprintln(w)
	row("Dip", FormatMinutes(c.Dip))
	row("Refraction", FormatMinutes(c.Refraction))
	row("SD", FormatMinutes(c.SD))
	row("HP", FormatMinutes(c.HP))
	row("Ho", celnav.FormatDM(c.Ho, "", "", 1))

	fmt.Fprintln(w)
	row("LHA", celnav.FormatDM(r.Reduction.LHA, "", "", 1))
	row("Hc", celnav.FormatDM(r.Reduction.Hc, "", "", 1))
	row("Zn", celnav.FormatDM(r.Reduction.Zn, "", "", 1))
	row("Intercept", FormatIntercept(r.Intercept))
	row("LOP intercept", FormatPosition(r.LOP.Intercept))
}

// Missing lists what a worksheet still needs before it can be reduced.
func Missing(ws celnav.Worksheet) []string {
	var missing []string
	if ws.Observation == nil {
		missing = append(missing, "geographic position")
	}
	if ws.Position == nil {
		missing = append(missing, "assumed position")
	}
	return missing
}

// FormatMinutes formats a correction in signed arc minutes.
func FormatMinutes(m float64) string {
	return fmt.Sprintf("%+.1f'", m)
}

// FormatIntercept formats an intercept as distance and direction.
func FormatIntercept(i celnav.Intercept) string {
	return fmt.Sprintf("%.2f nm %s", i.Distance, i.Direction)
}

// FormatPosition formats a position as latitude and longitude.
func FormatPosition(p celnav.Position) string {
	return celnav.FormatDM(p.Lat, "N", "S", 1) + " " + celnav.FormatDM(p.Lon, "E", "W", 1)
}

// WriteSummaryTable writes a text table of saved sights to the given writer.
func WriteSummaryTable(w io.Writer, sights []sight.Sight, timestamp time.Time) {
	fmt.Fprintf(w, "Saved sights @ %s\n", timestamp.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 86))

	if len(sights) == 0 {
		fmt.Fprintln(w, "No saved sights")
		return
	}

	// Header
	fmt.Fprintf(w, "%-3s %-3s %-16s %-12s %-10s %-10s %-10s %-9s %-7s\n",
		"#", "On", "Created", "Body", "Ho", "Hc", "Zn", "Int (nm)", "Dir")
	fmt.Fprintln(w, strings.Repeat("─", 86))

	// Rows
	active := 0
	for i, s := range sights {
		on := ""
		if s.Active {
			on = "*"
			active++
		}
		fmt.Fprintf(w, "%-3d %-3s %-16s %-12s %-10s %-10s %-10s %8.2f  %-7s\n",
			i+1,
			on,
			s.CreatedAt.UTC().Format("2006-01-02 15:04"),
			truncateStr(s.Body, 12),
			celnav.FormatDM(s.Ho, "", "", 1),
			celnav.FormatDM(s.Hc, "", "", 1),
			celnav.FormatDM(s.Zn, "", "", 1),
			s.Intercept,
			s.Direction,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d sights (%d active)\n", len(sights), active)
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
