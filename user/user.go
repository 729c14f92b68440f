// Package user holds the merged user model: the identity provider's minimal
// record layered with the application profile.
package user

import (
	"time"

	"github.com/harshvardhanchand/MediMind-sub001/identity"
	"github.com/harshvardhanchand/MediMind-sub001/profile"
)

// User is the application's view of the signed-in person. ID and Email come
// from the identity provider and are always present; the rest comes from the
// profile backend and may be missing when the fetch failed or the profile
// was never completed.
type User struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Name              string     `json:"name,omitempty"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	WeightKG          *float64   `json:"weight_kg,omitempty"`
	HeightCM          *float64   `json:"height_cm,omitempty"`
	Gender            string     `json:"gender,omitempty"`
	PhotoURL          string     `json:"photo_url,omitempty"`
	MedicalConditions []string   `json:"medical_conditions,omitempty"`
}

// FromIdentity builds a provider-only User. Used while the profile fetch is
// in flight and as the degraded result when it fails.
func FromIdentity(id identity.Identity) *User {
	return &User{ID: id.ID, Email: id.Email}
}

// Merge layers profile fields over the provider identity. The identity half
// always wins for ID and Email; a nil fields argument degrades to
// FromIdentity.
func Merge(id identity.Identity, fields *profile.Fields) *User {
	u := FromIdentity(id)
	if fields == nil {
		return u
	}
	u.Name = fields.Name
	u.DateOfBirth = fields.DateOfBirth
	u.WeightKG = fields.WeightKG
	u.HeightCM = fields.HeightCM
	u.Gender = fields.Gender
	u.PhotoURL = fields.PhotoURL
	u.MedicalConditions = fields.MedicalConditions
	return u
}

// HasCompletedProfile reports whether onboarding produced a usable profile.
// A profile counts as completed once it carries a name.
func (u *User) HasCompletedProfile() bool {
	return u != nil && u.Name != ""
}
