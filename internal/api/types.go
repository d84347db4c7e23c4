package api

import (
	"fmt"

	"github.com/dreamware/penguins/internal/filter"
	"github.com/dreamware/penguins/internal/session"
)

// Labels shown by every front end.
const (
	Title          = "Penguins Characteristics Explorer"
	SidebarTitle   = "Filter controls"
	MassLabel      = "Mass (g)"
	SpeciesLabel   = "Filter by Species"
	BoxTotal       = "Total Penguins In Dataset"
	BoxBillLength  = "Average Bill Length (mm)"
	BoxBillDepth   = "Average Bill Depth (mm)"
	CardScatter    = "Bill Length vs. Bill Depth by Species"
	CardTable      = "Penguin Dataset Preview"
	SourceLinksHdr = "Source Links"
)

// Link is a labelled external reference shown under the controls.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SourceLinks lists the project references displayed in the sidebar.
var SourceLinks = []Link{
	{Label: "GitHub Source", URL: "https://github.com/denisecase/cintel-07-tdash"},
	{Label: "GitHub App", URL: "https://denisecase.github.io/cintel-07-tdash/"},
	{Label: "GitHub Issues", URL: "https://github.com/denisecase/cintel-07-tdash/issues"},
	{Label: "PyShiny", URL: "https://shiny.posit.co/py/"},
	{Label: "Template: Basic Dashboard", URL: "https://shiny.posit.co/py/templates/dashboard/"},
	{Label: "See also", URL: "https://github.com/denisecase/pyshiny-penguins-dashboard-express"},
}

// Slider describes the body-mass control.
type Slider struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
	Value float64 `json:"value"`
}

// Checkboxes describes the species control.
type Checkboxes struct {
	Label    string   `json:"label"`
	Options  []string `json:"options"`
	Selected []string `json:"selected"`
}

// Controls is the full sidebar and layout definition returned by GET /controls.
type Controls struct {
	Title        string     `json:"title"`
	SidebarTitle string     `json:"sidebar_title"`
	Mass         Slider     `json:"mass"`
	Species      Checkboxes `json:"species"`
	Boxes        []string   `json:"boxes"`
	Cards        []string   `json:"cards"`
	LinksHeader  string     `json:"links_header"`
	Links        []Link     `json:"links"`
}

// NewControls builds the controls for the given species options and slider.
// Every option starts selected.
func NewControls(species []string, mass Slider) Controls {
	mass.Label = MassLabel
	return Controls{
		Title:        Title,
		SidebarTitle: SidebarTitle,
		Mass:         mass,
		Species: Checkboxes{
			Label:    SpeciesLabel,
			Options:  append([]string{}, species...),
			Selected: append([]string{}, species...),
		},
		Boxes:       []string{BoxTotal, BoxBillLength, BoxBillDepth},
		Cards:       []string{CardScatter, CardTable},
		LinksHeader: SourceLinksHdr,
		Links:       append([]Link{}, SourceLinks...),
	}
}

// Defaults returns the parameters a new session starts with.
func (c Controls) Defaults() filter.Params {
	return filter.NewParams(c.Species.Selected, c.Mass.Value)
}

// Params is the wire form of filter.Params.
type Params struct {
	Species []string `json:"species"`
	MaxMass float64  `json:"max_mass"`
}

// FromParams converts engine parameters to their wire form.
func FromParams(p filter.Params) Params {
	species := append([]string{}, p.Species...)
	return Params{Species: species, MaxMass: p.MaxMass}
}

// Filter converts wire parameters to engine parameters.
func (p Params) Filter() filter.Params {
	return filter.NewParams(p.Species, p.MaxMass)
}

// CreateSessionRequest opens a session. Nil fields take the control defaults.
type CreateSessionRequest struct {
	Species *[]string `json:"species,omitempty"`
	MaxMass *float64  `json:"max_mass,omitempty"`
}

// Resolve applies the request on top of defaults.
func (r CreateSessionRequest) Resolve(defaults filter.Params) filter.Params {
	species, mass := defaults.Species, defaults.MaxMass
	if r.Species != nil {
		species = *r.Species
	}
	if r.MaxMass != nil {
		mass = *r.MaxMass
	}
	return filter.NewParams(species, mass)
}

// SpeciesRequest replaces a session's species selection.
type SpeciesRequest struct {
	Species []string `json:"species"`
}

// MassRequest replaces a session's mass threshold.
type MassRequest struct {
	MaxMass *float64 `json:"max_mass"`
}

// SessionResponse describes one session's current parameters.
type SessionResponse struct {
	ID     string `json:"id"`
	Params Params `json:"params"`
}

// SessionInfo is one entry of GET /sessions.
type SessionInfo struct {
	session.Info
	Params Params `json:"params"`
}

// SessionList is the body of GET /sessions.
type SessionList struct {
	Sessions []SessionInfo `json:"sessions"`
}

// NewSessionList converts registry snapshots to their wire form.
func NewSessionList(infos []session.Info) SessionList {
	out := SessionList{Sessions: make([]SessionInfo, 0, len(infos))}
	for _, info := range infos {
		out.Sessions = append(out.Sessions, SessionInfo{Info: info, Params: FromParams(info.Params)})
	}
	return out
}

// ValueBox is one headline number with its display text.
type ValueBox struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Summary is the body of GET /sessions/{id}/summary.
type Summary struct {
	Count          int         `json:"count"`
	MeanBillLength filter.Mean `json:"mean_bill_length_mm"`
	MeanBillDepth  filter.Mean `json:"mean_bill_depth_mm"`
	Boxes          []ValueBox  `json:"boxes"`
}

// NewSummary builds the summary and its three value boxes.
func NewSummary(count int, billLength, billDepth filter.Mean) Summary {
	return Summary{
		Count:          count,
		MeanBillLength: billLength,
		MeanBillDepth:  billDepth,
		Boxes: []ValueBox{
			{Title: BoxTotal, Text: fmt.Sprintf("%d", count)},
			{Title: BoxBillLength, Text: billLength.Format("mm")},
			{Title: BoxBillDepth, Text: billDepth.Format("mm")},
		},
	}
}

// SummaryOf reads the summary values from one engine snapshot, so the
// count and the means always belong to the same parameters.
func SummaryOf(e *filter.Engine) Summary {
	snap := e.Snapshot()
	return NewSummary(snap.Count, snap.MeanBillLength, snap.MeanBillDepth)
}

// Table is the body of GET /sessions/{id}/table.
type Table struct {
	Columns []string          `json:"columns"`
	Rows    []filter.TableRow `json:"rows"`
}

// TableOf reads the table from an engine.
func TableOf(e *filter.Engine) Table {
	return Table{Columns: append([]string{}, filter.TableColumns...), Rows: e.TableRows()}
}

// Scatter is the body of GET /sessions/{id}/scatter.
type Scatter struct {
	X      string                `json:"x"`
	Y      string                `json:"y"`
	Hue    string                `json:"hue"`
	Points []filter.ScatterPoint `json:"points"`
}

// ScatterOf reads the scatter data from an engine.
func ScatterOf(e *filter.Engine) Scatter {
	return Scatter{X: "bill_length_mm", Y: "bill_depth_mm", Hue: "species", Points: e.ScatterData()}
}

// Stats is the body of GET /sessions/{id}/stats.
type Stats struct {
	ViewComputes    uint64 `json:"view_computes"`
	ViewHits        uint64 `json:"view_hits"`
	DerivedComputes uint64 `json:"derived_computes"`
	DerivedHits     uint64 `json:"derived_hits"`
	Invalidations   uint64 `json:"invalidations"`
}

// FromStats converts engine counters to their wire form.
func FromStats(s filter.Stats) Stats {
	return Stats{
		ViewComputes:    s.ViewComputes,
		ViewHits:        s.ViewHits,
		DerivedComputes: s.DerivedComputes,
		DerivedHits:     s.DerivedHits,
		Invalidations:   s.Invalidations,
	}
}

// Error is the body of every non-2xx response.
type Error struct {
	Error string `json:"error"`
}
