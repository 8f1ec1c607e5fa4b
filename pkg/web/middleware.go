package web

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/procanvas/procanvas/pkg/auth"
	"github.com/procanvas/procanvas/pkg/log"
	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/persistence"
)

const identityKey = "identity"

// Identity is the authenticated caller attached to each request. The
// profile is nil for users who signed up but have not been provisioned
// into an organization yet.
type Identity struct {
	UserID  string
	Profile *models.Profile
}

func (i *Identity) Role() models.Role {
	if i.Profile == nil {
		return ""
	}

	return i.Profile.Role
}

func (i *Identity) TenantID() string {
	if i.Profile == nil {
		return ""
	}

	return i.Profile.TenantID
}

func (i *Identity) FullName() string {
	if i.Profile == nil {
		return ""
	}

	return i.Profile.FullName
}

// NewIdentityMiddleware resolves the bearer token to an Identity and
// attaches it to the request, rejecting requests without a valid
// session.
func NewIdentityMiddleware(sessions auth.SessionStore, profiles persistence.ProfileRepository) fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get("Authorization")

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return unauthorized(c, "missing bearer token")
		}

		session, err := sessions.Get(c.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrSessionNotFound) {
				return unauthorized(c, "session not found or expired")
			}

			return internalError(c, err)
		}

		profile, err := profiles.GetByID(c.Context(), session.UserID)
		if err != nil {
			return internalError(c, err)
		}

		c.Locals(identityKey, &Identity{UserID: session.UserID, Profile: profile})
		c.SetContext(log.IntoContext(c.Context(), log.FromContext(c.Context()).With("user_id", session.UserID)))

		return c.Next()
	}
}

func identityFrom(c fiber.Ctx) *Identity {
	identity, _ := c.Locals(identityKey).(*Identity)

	return identity
}
