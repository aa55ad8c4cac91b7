package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terravista/internal/auth"
	"terravista/internal/model"
)

type stubUserStore struct {
	users map[uuid.UUID]*model.User
}

func (s *stubUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, goerrors.New("user not found", goerrors.CategoryNotFound).WithCode(goerrors.CodeNotFound)
}

func (s *stubUserStore) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, goerrors.New("user not found", goerrors.CategoryNotFound)
}

func (s *stubUserStore) Create(_ context.Context, u *model.User) (*model.User, error) { return u, nil }

func (s *stubUserStore) GetOrCreate(_ context.Context, u *model.User) (*model.User, error) {
	return u, nil
}

func (s *stubUserStore) UpdatePassword(context.Context, uuid.UUID, string) error { return nil }

func (s *stubUserStore) MarkEmailVerified(context.Context, uuid.UUID) error { return nil }

type stubTokenStore struct{}

func (stubTokenStore) Save(_ context.Context, rec *model.Token) (*model.Token, error) {
	return rec, nil
}

func (stubTokenStore) FindActive(context.Context, string, model.TokenType) (*model.Token, error) {
	return nil, goerrors.New("token not found", goerrors.CategoryNotFound)
}

func (stubTokenStore) Delete(context.Context, uuid.UUID) error { return nil }

func (stubTokenStore) DeleteByUserAndType(context.Context, uuid.UUID, model.TokenType) error {
	return nil
}

type gateFixture struct {
	app    *fiber.App
	tokens *auth.TokenService
	admin  *model.User
	user   *model.User
}

func setupGate(t *testing.T, capabilities ...auth.Capability) *gateFixture {
	t.Helper()

	admin := &model.User{ID: uuid.New(), Email: "admin@example.com", Role: model.RoleAdmin}
	regular := &model.User{ID: uuid.New(), Email: "user@example.com", Role: model.RoleUser}

	users := &stubUserStore{users: map[uuid.UUID]*model.User{
		admin.ID:   admin,
		regular.ID: regular,
	}}

	tokens := auth.NewTokenService(auth.TokenConfig{
		SigningKey: []byte("gate-test-key"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, stubTokenStore{}, users, nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			var rich *goerrors.Error
			if goerrors.As(err, &rich) && rich.Code > 0 {
				status = rich.Code
			}
			return c.SendStatus(status)
		},
	})

	app.Get("/protected", Authorize(tokens, users, capabilities...), func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"email": user.Email})
	})

	return &gateFixture{app: app, tokens: tokens, admin: admin, user: regular}
}

func (f *gateFixture) request(t *testing.T, authorization string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	return resp
}

func (f *gateFixture) accessToken(t *testing.T, user *model.User, expiresAt time.Time) string {
	t.Helper()
	signed, err := f.tokens.Sign(user.ID.String(), expiresAt, model.TokenTypeAccess)
	require.NoError(t, err)
	return signed
}

func TestAuthorize(t *testing.T) {
	t.Run("missing header is unauthorized", func(t *testing.T) {
		f := setupGate(t)
		resp := f.request(t, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed header is unauthorized", func(t *testing.T) {
		f := setupGate(t)
		resp := f.request(t, "Token abc")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid access token passes", func(t *testing.T) {
		f := setupGate(t)
		token := f.accessToken(t, f.user, time.Now().Add(time.Minute))
		resp := f.request(t, "Bearer "+token)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("expired access token is unauthorized even when correctly signed", func(t *testing.T) {
		f := setupGate(t)
		token := f.accessToken(t, f.user, time.Now().Add(-time.Minute))
		resp := f.request(t, "Bearer "+token)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh token cannot act as access token", func(t *testing.T) {
		f := setupGate(t)
		signed, err := f.tokens.Sign(f.user.ID.String(), time.Now().Add(time.Hour), model.TokenTypeRefresh)
		require.NoError(t, err)

		resp := f.request(t, "Bearer "+signed)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token for unknown user is unauthorized", func(t *testing.T) {
		f := setupGate(t)
		ghost := &model.User{ID: uuid.New()}
		token := f.accessToken(t, ghost, time.Now().Add(time.Minute))
		resp := f.request(t, "Bearer "+token)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthorizeCapabilities(t *testing.T) {
	t.Run("regular user is rejected from admin route", func(t *testing.T) {
		f := setupGate(t, auth.CapabilityGetUsers)
		token := f.accessToken(t, f.user, time.Now().Add(time.Minute))
		resp := f.request(t, "Bearer "+token)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("admin passes the admin route", func(t *testing.T) {
		f := setupGate(t, auth.CapabilityGetUsers)
		token := f.accessToken(t, f.admin, time.Now().Add(time.Minute))
		resp := f.request(t, "Bearer "+token)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("both roles hold createPost", func(t *testing.T) {
		f := setupGate(t, auth.CapabilityCreatePost)

		for _, u := range []*model.User{f.user, f.admin} {
			token := f.accessToken(t, u, time.Now().Add(time.Minute))
			resp := f.request(t, "Bearer "+token)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}
	})
}
