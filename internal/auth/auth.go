package auth

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/transport-management/internal"
	"github.com/golang-jwt/jwt/v5"
)

// Role is the single role attached to a user. Every workflow call is gated
// on the caller's role, so the principal carries it explicitly.
type Role string

const (
	RoleEmployee  Role = "EMPLOYEE"
	RoleManager   Role = "MANAGER"
	RoleTransport Role = "TRANSPORT"
	RoleAdmin     Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleEmployee, RoleManager, RoleTransport, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// User is the resolved principal passed into every workflow service call.
type User struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Company    string `json:"company"`
	Role       Role   `json:"role"`
}

func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsStaff reports whether the user belongs to any of the operational roles
// that may see trips they do not own.
func (u *User) IsStaff() bool {
	return u.HasRole(RoleManager, RoleTransport, RoleAdmin)
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUser(userID int64) (*User, error)
}

type RepositoryAPI interface {
	GetCredentialsByEmail(email string) (passwordHash string, userID int64, err error)
	GetUserByID(userID int64) (*User, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID int64, role Role) (token string, err error)
	GenerateRefreshToken(userID int64, role Role) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
	ErrUserNotFound       = errors.New("user not found")
)

// UserFromContext returns the principal stored by the auth middleware.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(internal.ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, internal.ContextUserKey, u)
}

// tokenExpiryLeeway guards against clocks drifting between issuer and
// validator.
const tokenExpiryLeeway = 10 * time.Second
