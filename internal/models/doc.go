// Package models defines the domain models for the people service.
//
// There is one model:
//   - Person: a named record with a database-assigned integer ID
//
// People are created through POST /people and read in bulk through GET /.
// Nothing in the service updates or deletes a person.
package models
