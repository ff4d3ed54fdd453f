package auth_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/transport-management/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

type mockUserRepository struct {
	credentials map[string]struct {
		hash   string
		userID int64
	}
	users map[int64]*auth.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		credentials: make(map[string]struct {
			hash   string
			userID int64
		}),
		users: make(map[int64]*auth.User),
	}
}

func (m *mockUserRepository) addUser(user *auth.User, password string) {
	hash, err := auth.HashPassword(password, 4)
	Expect(err).ToNot(HaveOccurred())
	m.credentials[user.Email] = struct {
		hash   string
		userID int64
	}{hash: hash, userID: user.ID}
	m.users[user.ID] = user
}

func (m *mockUserRepository) GetCredentialsByEmail(email string) (string, int64, error) {
	cred, ok := m.credentials[email]
	if !ok {
		return "", 0, auth.ErrUserNotFound
	}
	return cred.hash, cred.userID, nil
}

func (m *mockUserRepository) GetUserByID(userID int64) (*auth.User, error) {
	user, ok := m.users[userID]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return user, nil
}

var _ = Describe("AuthService", func() {
	var (
		service  *auth.Service
		mockRepo *mockUserRepository
		tokens   *auth.JWTTokenGenerator
	)

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		mockRepo.addUser(&auth.User{
			ID:    1,
			Email: "budi@mail.com",
			Name:  "Budi",
			Role:  auth.RoleEmployee,
		}, "password")

		tokens = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
		service = auth.NewService(mockRepo, tokens)
	})

	Describe("Authenticate", func() {
		It("returns a token pair for valid credentials", func() {
			pair, err := service.Authenticate(auth.LoginDTO{Email: "budi@mail.com", Password: "password"})

			Expect(err).ToNot(HaveOccurred())
			Expect(pair.AccessToken).ToNot(BeEmpty())
			Expect(pair.RefreshToken).ToNot(BeEmpty())

			claims, err := service.ValidateAccessToken(pair.AccessToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(1)))
			Expect(claims.Role).To(Equal(string(auth.RoleEmployee)))
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "budi@mail.com", Password: "nope"})

			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("rejects an unknown email with the same error", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "ghost@mail.com", Password: "password"})

			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("rejects empty credentials before touching storage", func() {
			_, err := service.Authenticate(auth.LoginDTO{})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RefreshTokens", func() {
		It("issues a fresh pair from a valid refresh token", func() {
			pair, err := service.Authenticate(auth.LoginDTO{Email: "budi@mail.com", Password: "password"})
			Expect(err).ToNot(HaveOccurred())

			renewed, err := service.RefreshTokens(pair.RefreshToken)

			Expect(err).ToNot(HaveOccurred())
			Expect(renewed.AccessToken).ToNot(BeEmpty())
			Expect(renewed.RefreshToken).ToNot(BeEmpty())
		})

		It("picks up a role change on refresh", func() {
			pair, err := service.Authenticate(auth.LoginDTO{Email: "budi@mail.com", Password: "password"})
			Expect(err).ToNot(HaveOccurred())

			mockRepo.users[1].Role = auth.RoleManager

			renewed, err := service.RefreshTokens(pair.RefreshToken)
			Expect(err).ToNot(HaveOccurred())

			claims, err := service.ValidateAccessToken(renewed.AccessToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.Role).To(Equal(string(auth.RoleManager)))
		})

		It("fails once the user is gone", func() {
			pair, err := service.Authenticate(auth.LoginDTO{Email: "budi@mail.com", Password: "password"})
			Expect(err).ToNot(HaveOccurred())

			delete(mockRepo.users, 1)

			_, err = service.RefreshTokens(pair.RefreshToken)

			Expect(err).To(Equal(auth.ErrInvalidToken))
		})

		It("rejects garbage tokens", func() {
			_, err := service.RefreshTokens("not-a-jwt")

			Expect(err).To(Equal(auth.ErrInvalidToken))
		})
	})

	Describe("ValidateToken", func() {
		It("rejects a token signed with a different secret", func() {
			other := auth.NewJWTTokenGenerator("wrong-secret", "also-wrong", 15*time.Minute, 24*time.Hour)
			token, err := other.GenerateAccessToken(1, auth.RoleEmployee)
			Expect(err).ToNot(HaveOccurred())

			_, err = tokens.ValidateToken(token)

			Expect(err).To(Equal(auth.ErrInvalidToken))
		})

		It("rejects an expired token", func() {
			expired := &auth.JWTTokenGenerator{
				AccessTokenSecret:  []byte("access-secret"),
				RefreshTokenSecret: []byte("refresh-secret"),
				AccessTokenTTL:     -2 * time.Minute,
				RefreshTokenTTL:    -2 * time.Minute,
			}
			token, err := expired.GenerateAccessToken(1, auth.RoleEmployee)
			Expect(err).ToNot(HaveOccurred())

			_, err = tokens.ValidateToken(token)

			Expect(err).To(Equal(auth.ErrTokenExpired))
		})

		It("rejects a token carrying an unknown role", func() {
			token, err := tokens.GenerateAccessToken(1, auth.Role("superuser"))
			Expect(err).ToNot(HaveOccurred())

			_, err = tokens.ValidateToken(token)

			Expect(err).To(Equal(auth.ErrInvalidToken))
		})
	})

	Describe("Passwords", func() {
		It("verifies a hashed password", func() {
			hash, err := auth.HashPassword("s3cret", 4)
			Expect(err).ToNot(HaveOccurred())

			Expect(auth.VerifyPassword(hash, "s3cret")).To(Succeed())
			Expect(auth.VerifyPassword(hash, "wrong")).ToNot(Succeed())
		})
	})
})
