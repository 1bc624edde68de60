// Package app holds the marketplace services: job management, the
// application lifecycle engine, progress tracking, and the side-effect
// dispatcher they share.
package app

import "github.com/garnizeh/fairway/internal/models"

// Actor is the authenticated account a request acts as. It is resolved from
// the verified token by the API layer and passed explicitly to every
// operation; services never read identity from ambient state.
type Actor struct {
	ID   int64
	Type string
}

func (a Actor) IsCourse() bool       { return a.Type == models.AccountTypeCourse }
func (a Actor) IsProfessional() bool { return a.Type == models.AccountTypeProfessional }
