package models

// Event represents a group of people sharing expenses (a trip, a dinner).
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string

	// Name is the display name of the event (e.g., "Goa Trip").
	Name string

	// CreatedBy is the username of the member who created the event.
	CreatedBy string

	// Members is the list of usernames taking part in the event.
	Members []string

	// CreatedAt is the Unix timestamp when the event was created.
	CreatedAt int64
}

// HasMember reports whether username is one of the event members.
func (e *Event) HasMember(username string) bool {
	for _, m := range e.Members {
		if m == username {
			return true
		}
	}
	return false
}
