package listing

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("listing not found")

// Listing is a material or service offered by an organization.
// Cmimi is stored as text in the primary store and normalized to a number
// at the service boundary.
type Listing struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Titulli        string    `json:"titulli"`
	Pershkrimi     string    `json:"pershkrimi"`
	Kategoria      string    `json:"kategoria"`
	Qyteti         string    `json:"qyteti"`
	Cmimi          float64   `json:"cmimi"`
	Njesia         string    `json:"njesia"`
	EshteAktiv     bool      `json:"eshte_aktiv"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Patch struct {
	Titulli    *string  `json:"titulli,omitempty"`
	Pershkrimi *string  `json:"pershkrimi,omitempty"`
	Kategoria  *string  `json:"kategoria,omitempty"`
	Qyteti     *string  `json:"qyteti,omitempty"`
	Cmimi      *float64 `json:"cmimi,omitempty"`
	Njesia     *string  `json:"njesia,omitempty"`
	EshteAktiv *bool    `json:"eshte_aktiv,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Titulli == nil && p.Pershkrimi == nil && p.Kategoria == nil &&
		p.Qyteti == nil && p.Cmimi == nil && p.Njesia == nil && p.EshteAktiv == nil
}

// Filter narrows directory listings; nil fields are ignored.
type Filter struct {
	Qyteti    *string
	Kategoria *string
	Limit     int
	Offset    int

	// Keyset pagination: rows strictly older than this position, ordered by
	// created_at DESC, id DESC. Takes precedence over Offset when set.
	AfterCreatedAt *time.Time
	AfterID        *string
}
