package models

// DefaultPersonName is stored when a create request carries no name.
const DefaultPersonName = "Luiz"

// Person is a single row of the people table.
type Person struct {
	// ID is assigned by the database on insert (auto-increment).
	ID int64

	// Name is never empty once stored.
	Name string
}
