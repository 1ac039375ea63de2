package theme

import "github.com/charmbracelet/lipgloss"

// DefaultID is the theme used when nothing else is chosen.
const DefaultID = "earth"

// Palette is the set of colors a theme defines.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	LightBg   lipgloss.Color
	Surface   lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
}

// Theme is a named palette.
type Theme struct {
	ID     string
	Name   string
	Colors Palette
}

var themes = []Theme{
	{ID: "original", Name: "オリジナル", Colors: Palette{
		Primary: "#4f46e5", Secondary: "#818cf8", Accent: "#f59e0b",
		LightBg: "#f8fafc", Surface: "#ffffff", Text: "#1e293b", Muted: "#64748b", Error: "#dc2626",
	}},
	{ID: "earth", Name: "アース", Colors: Palette{
		Primary: "#8b5e3c", Secondary: "#b08968", Accent: "#6b8f71",
		LightBg: "#eadfca", Surface: "#f5efe3", Text: "#3e2c1c", Muted: "#7f6a55", Error: "#b23a48",
	}},
	{ID: "ocean", Name: "オーシャン", Colors: Palette{
		Primary: "#0e7490", Secondary: "#22d3ee", Accent: "#f97316",
		LightBg: "#e0f2fe", Surface: "#f0f9ff", Text: "#0c4a6e", Muted: "#5b7f95", Error: "#e11d48",
	}},
	{ID: "forest", Name: "フォレスト", Colors: Palette{
		Primary: "#2f5d3a", Secondary: "#5a8f5c", Accent: "#c9a227",
		LightBg: "#e3eddc", Surface: "#f2f7ee", Text: "#1f3324", Muted: "#667a68", Error: "#a4372b",
	}},
	{ID: "sakura", Name: "さくら", Colors: Palette{
		Primary: "#c2185b", Secondary: "#f48fb1", Accent: "#7cb342",
		LightBg: "#fde7ef", Surface: "#fff5f8", Text: "#4a1c2c", Muted: "#9c6b7d", Error: "#b71c1c",
	}},
	{ID: "night", Name: "ナイト", Colors: Palette{
		Primary: "#a78bfa", Secondary: "#7c3aed", Accent: "#fbbf24",
		LightBg: "#111827", Surface: "#1f2937", Text: "#e5e7eb", Muted: "#9ca3af", Error: "#f87171",
	}},
}

// All returns every theme in menu order.
func All() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

// IDs returns the theme ids in menu order.
func IDs() []string {
	ids := make([]string, len(themes))
	for i, t := range themes {
		ids[i] = t.ID
	}
	return ids
}

// Lookup finds a theme by id. An unknown id yields the earth theme (or the first theme)
// and false, so callers can warn about it.
func Lookup(id string) (Theme, bool) {
	for _, t := range themes {
		if t.ID == id {
			return t, true
		}
	}
	for _, t := range themes {
		if t.ID == DefaultID {
			return t, false
		}
	}
	return themes[0], false
}

// Next returns the theme after id, wrapping around.
func Next(id string) Theme {
	for i, t := range themes {
		if t.ID == id {
			return themes[(i+1)%len(themes)]
		}
	}
	t, _ := Lookup(id)
	return t
}
