package repository

import "time"

// TabRow represents a tabs row.
type TabRow struct {
	ID        string
	Title     string
	MemoText  string
	Numbers   []float64
	Sum       float64
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Setting keys.
const (
	SettingActiveTab = "active_tab"
	SettingTheme     = "theme"
)
