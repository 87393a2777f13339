// Package domain defines core data models and contracts shared across the app.
// It contains plain types (wire/state), the error taxonomy, and collaborator
// interfaces only.
package domain
