package repository

import "time"

// SavedFilter is a named transaction filter kept on this machine.
type SavedFilter struct {
	ID        string
	Name      string
	Data      string
	Anno      int
	Mese      int
	ContoID   int64
	TagID     int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
