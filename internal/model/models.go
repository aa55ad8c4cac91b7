package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is a regular account (create listings)
	RoleUser UserRole = "user"
	// RoleAdmin is an administrator (manage users and listings)
	RoleAdmin UserRole = "admin"
)

// ParseRole safely parses a string into a UserRole
func ParseRole(roleStr string) (UserRole, bool) {
	switch roleStr {
	case RoleUser, RoleAdmin:
		return UserRole(roleStr), true
	default:
		return "", false
	}
}

// TokenType tags a signed token with its purpose. Only non-access
// tokens are ever persisted.
type TokenType string

const (
	TokenTypeAccess        TokenType = "access"
	TokenTypeRefresh       TokenType = "refresh"
	TokenTypeResetPassword TokenType = "reset_password"
	TokenTypeVerifyEmail   TokenType = "verify_email"
)

// IsValid checks the type is one of the known token types
func (t TokenType) IsValid() bool {
	switch t {
	case TokenTypeAccess, TokenTypeRefresh, TokenTypeResetPassword, TokenTypeVerifyEmail:
		return true
	default:
		return false
	}
}

// Persistable reports whether tokens of this type are stored. Access
// tokens are stateless and never hit the database.
func (t TokenType) Persistable() bool {
	return t != TokenTypeAccess
}

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name           string     `bun:"name,notnull" json:"name,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	Role           UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	EmailValidated bool       `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// IsAdmin reports whether this user carries the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Token is a persisted non-access token. Rows are created on issue and
// deleted on consumption, never updated in place.
type Token struct {
	bun.BaseModel `bun:"table:tokens,alias:tok"`

	ID          uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token       string     `bun:"token,notnull,unique" json:"token,omitempty"`
	UserID      uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User        *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Type        TokenType  `bun:"token_type,notnull" json:"type,omitempty"`
	ExpiresAt   time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	Blacklisted bool       `bun:"blacklisted,notnull,default:false" json:"blacklisted,omitempty"`
	CreatedAt   *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Property is a real-estate listing
type Property struct {
	bun.BaseModel `bun:"table:properties,alias:prop"`

	ID           uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Images       []string   `bun:"images,type:jsonb" json:"propertyImage,omitempty"`
	Name         string     `bun:"name,notnull" json:"propertyName,omitempty"`
	Location     string     `bun:"location,notnull" json:"location,omitempty"`
	Description  string     `bun:"description" json:"description,omitempty"`
	Bedroom      int        `bun:"bedroom" json:"bedroom,omitempty"`
	Bathroom     int        `bun:"bathroom" json:"bathroom,omitempty"`
	BuildingArea float64    `bun:"building_area" json:"buildingArea,omitempty"`
	LandArea     float64    `bun:"land_area" json:"landArea,omitempty"`
	Floor        int        `bun:"floor" json:"floor,omitempty"`
	Year         int        `bun:"year" json:"year,omitempty"`
	CreatedAt    *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt    *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt    *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Post links a property listing to the user that published it
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:post"`

	ID         uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PropertyID uuid.UUID  `bun:"property_id,notnull,type:uuid" json:"property_id,omitempty"`
	Property   *Property  `bun:"rel:belongs-to,join:property_id=id" json:"property,omitempty"`
	UserID     uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User       *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	CreatedAt  *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
