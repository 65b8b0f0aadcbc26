package profile

import (
	"errors"
	"time"
)

// Roles stored in users.roli. "Individual" is the default for self-registered
// accounts; organizational roles are assigned during onboarding.
const (
	RoleIndividual   = "Individual"
	RoleAdmin        = "Admin"
	RoleOrganization = "Organizate"
)

var ErrNotFound = errors.New("profile not found")

// Profile extends an identity-provider user with domain attributes.
// Keyed 1:1 by the provider's user id.
type Profile struct {
	ID            string    `json:"id"`
	EmriIPlote    string    `json:"emri_i_plote"`
	Email         string    `json:"email"`
	Vendndodhja   string    `json:"vendndodhja"`
	Roli          string    `json:"roli"`
	EshteAprovuar bool      `json:"eshte_aprovuar"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Patch carries the mutable fields for admin updates; nil means "leave as is".
type Patch struct {
	EmriIPlote    *string `json:"emri_i_plote,omitempty"`
	Vendndodhja   *string `json:"vendndodhja,omitempty"`
	Roli          *string `json:"roli,omitempty"`
	EshteAprovuar *bool   `json:"eshte_aprovuar,omitempty"`
}

func (p Patch) Empty() bool {
	return p.EmriIPlote == nil && p.Vendndodhja == nil && p.Roli == nil && p.EshteAprovuar == nil
}

// NewDefault synthesizes the lazily created profile for a first
// authenticated access: role Individual, not yet approved.
func NewDefault(userID, email, name string) Profile {
	now := time.Now().UTC()

	return Profile{
		ID:            userID,
		EmriIPlote:    name,
		Email:         email,
		Roli:          RoleIndividual,
		EshteAprovuar: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
