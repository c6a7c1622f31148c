package api

import (
	"net/url"
	"slices"
	"strings"
)

// Course page tabs
const (
	TabOverview     = "overview"
	TabAuthors      = "authors"
	TabTestimonials = "testimonials"
)

// Tab is a course page tab
type Tab struct {
	ID    string
	Label string
}

// Tabs in display order
var Tabs = []Tab{
	{ID: TabOverview, Label: "Overview"},
	{ID: TabAuthors, Label: "Authors"},
	{ID: TabTestimonials, Label: "Testimonials"},
}

// ViewState is the presentation state carried in page URLs: sidebar
// visibility, expanded sidebar modules and the active course tab.
// It never affects navigation.
type ViewState struct {
	SidebarOpen     bool
	ExpandedModules []string
	ActiveTab       string
}

// ParseViewState reads the view state from a query string. When the query
// does not mention expand, only currentModuleID is expanded.
func ParseViewState(q url.Values, currentModuleID string) ViewState {
	v := ViewState{
		SidebarOpen: q.Get("sidebar") != "closed",
		ActiveTab:   normalizeTab(q.Get("tab")),
	}

	if _, ok := q["expand"]; ok {
		v.ExpandedModules = []string{}
		for _, id := range strings.Split(q.Get("expand"), ",") {
			if id != "" && !slices.Contains(v.ExpandedModules, id) {
				v.ExpandedModules = append(v.ExpandedModules, id)
			}
		}
	} else if currentModuleID != "" {
		v.ExpandedModules = []string{currentModuleID}
	}

	return v
}

func normalizeTab(tab string) string {
	for _, t := range Tabs {
		if t.ID == tab {
			return tab
		}
	}
	return TabOverview
}

// IsExpanded reports whether the sidebar module is expanded
func (v ViewState) IsExpanded(moduleID string) bool {
	return slices.Contains(v.ExpandedModules, moduleID)
}

// Toggle returns a copy with moduleID expanded if it was collapsed and vice versa
func (v ViewState) Toggle(moduleID string) ViewState {
	next := v
	if v.IsExpanded(moduleID) {
		next.ExpandedModules = make([]string, 0, len(v.ExpandedModules))
		for _, id := range v.ExpandedModules {
			if id != moduleID {
				next.ExpandedModules = append(next.ExpandedModules, id)
			}
		}
		return next
	}
	next.ExpandedModules = append(slices.Clone(v.ExpandedModules), moduleID)
	return next
}

// ToggleSidebar returns a copy with the sidebar visibility flipped
func (v ViewState) ToggleSidebar() ViewState {
	next := v
	next.SidebarOpen = !v.SidebarOpen
	return next
}

// WithTab returns a copy with tab active
func (v ViewState) WithTab(tab string) ViewState {
	next := v
	next.ActiveTab = normalizeTab(tab)
	return next
}

// Query encodes the state, omitting defaults. A non-nil empty
// ExpandedModules is written as "expand=" so a fully collapsed sidebar
// survives the round trip.
func (v ViewState) Query() url.Values {
	q := url.Values{}
	if !v.SidebarOpen {
		q.Set("sidebar", "closed")
	}
	if v.ExpandedModules != nil {
		q.Set("expand", strings.Join(v.ExpandedModules, ","))
	}
	if tab := normalizeTab(v.ActiveTab); tab != TabOverview {
		q.Set("tab", tab)
	}
	return q
}

// Encode returns the state as a URL query string
func (v ViewState) Encode() string {
	return v.Query().Encode()
}
