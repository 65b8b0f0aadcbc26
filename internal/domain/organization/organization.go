package organization

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("organization not found")

// Membership roles within an organization.
const (
	MemberOwner = "Pronar"
	MemberStaff = "Anetar"
)

type Organization struct {
	ID            string    `json:"id"`
	Emri          string    `json:"emri"`
	Pershkrimi    string    `json:"pershkrimi"`
	Qyteti        string    `json:"qyteti"`
	Email         string    `json:"email"`
	OwnerID       string    `json:"owner_id"`
	EshteAprovuar bool      `json:"eshte_aprovuar"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Member struct {
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Roli           string    `json:"roli"`
	CreatedAt      time.Time `json:"created_at"`
}

type CreateRequest struct {
	Emri       string `json:"emri" binding:"required,min=2"`
	Pershkrimi string `json:"pershkrimi"`
	Qyteti     string `json:"qyteti" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
}

type Patch struct {
	Emri          *string `json:"emri,omitempty"`
	Pershkrimi    *string `json:"pershkrimi,omitempty"`
	Qyteti        *string `json:"qyteti,omitempty"`
	Email         *string `json:"email,omitempty"`
	EshteAprovuar *bool   `json:"eshte_aprovuar,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Emri == nil && p.Pershkrimi == nil && p.Qyteti == nil && p.Email == nil && p.EshteAprovuar == nil
}

// NewFromCreateRequest builds the unapproved organization row for onboarding.
func NewFromCreateRequest(ownerID string, req CreateRequest) Organization {
	now := time.Now().UTC()

	return Organization{
		ID:            uuid.NewString(),
		Emri:          req.Emri,
		Pershkrimi:    req.Pershkrimi,
		Qyteti:        req.Qyteti,
		Email:         req.Email,
		OwnerID:       ownerID,
		EshteAprovuar: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
