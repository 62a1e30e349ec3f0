package signin

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MaxNameLength bounds the display name, in runes, on create and
// update. Matches the rune counting the request validators use.
const MaxNameLength = 100

// User is the user model. One record per distinct provider subject;
// records are never physically deleted, deactivation flips IsActive.
type User struct {
	bun.BaseModel   `bun:"table:users,alias:usr"`
	ID              uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ProviderSubject string     `bun:"provider_subject,notnull,unique" json:"provider_subject,omitempty"`
	Email           string     `bun:"email,notnull" json:"email,omitempty"`
	Name            string     `bun:"name,notnull" json:"name,omitempty"`
	Picture         string     `bun:"picture" json:"picture,omitempty"`
	IsActive        bool       `bun:"is_active" json:"is_active"`
	CreatedAt       *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ProfileView is the wire representation of a user record.
type ProfileView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Picture   string     `json:"picture,omitempty"`
	IsActive  bool       `json:"isActive"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// View maps the record to its wire representation.
func (u *User) View() *ProfileView {
	if u == nil {
		return nil
	}

	return &ProfileView{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Picture:   u.Picture,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NormalizeEmail lowercases and trims an email so uniqueness checks and
// lookups are case insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// TruncateName enforces the display name bound without failing writes
// that originate from the identity provider. The cut lands on a rune
// boundary so stored names are always valid UTF-8.
func TruncateName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	return string([]rune(name)[:MaxNameLength])
}
