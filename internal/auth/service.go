package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Service performs authentication and principal resolution.
type Service struct {
	userRepo       RepositoryAPI
	tokenGenerator TokenGeneratorAPI
}

func NewService(userRepo RepositoryAPI, tokenGen TokenGeneratorAPI) *Service {
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
	}
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * 7 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate validates credentials and returns an access/refresh pair.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	storedHash, userID, err := s.userRepo.GetCredentialsByEmail(dto.Email)
	if err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshTokens validates a refresh token and issues a new pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	// Re-resolve the user so a role change or deactivation takes effect on
	// the next refresh.
	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return AuthTokens{}, err
	}

	newRefreshToken, err := s.tokenGenerator.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// GetUser resolves the full principal for a user id.
func (s *Service) GetUser(userID int64) (*User, error) {
	return s.userRepo.GetUserByID(userID)
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, role Role) (string, error) {
	return j.signToken(userID, role, j.AccessTokenTTL, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) GenerateRefreshToken(userID int64, role Role) (string, error) {
	return j.signToken(userID, role, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) signToken(userID int64, role Role, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates a JWT against the access secret first and falls
// back to the refresh secret, returning the embedded claims.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	claims, err := j.parseWithSecret(tokenString, j.AccessTokenSecret)
	if err == nil {
		return claims, nil
	}
	if err == ErrTokenExpired {
		return nil, err
	}
	return j.parseWithSecret(tokenString, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) parseWithSecret(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithLeeway(tokenExpiryLeeway))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if _, ok := ParseRole(claims.Role); !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
