// Package profile defines the extended user-profile layer fetched from the
// MediMind backend on top of the identity provider's minimal record.
package profile

import (
	"context"
	"time"
)

// Fields are the application-specific profile attributes. Everything except
// the name is optional; an account fresh out of sign-up has none of them.
type Fields struct {
	Name              string     `json:"name,omitempty"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	WeightKG          *float64   `json:"weight_kg,omitempty"`
	HeightCM          *float64   `json:"height_cm,omitempty"`
	Gender            string     `json:"gender,omitempty"`
	PhotoURL          string     `json:"photo_url,omitempty"`
	MedicalConditions []string   `json:"medical_conditions,omitempty"`
}

// Service fetches the profile of the currently authenticated user. A failed
// fetch never invalidates the session; callers degrade to the identity
// provider's fields.
type Service interface {
	CurrentProfile(ctx context.Context) (*Fields, error)
}
