package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/fairyhunter13/storefront/internal/model"
)

const userIDKey = "user_id"

// ErrMissingToken is returned when the request carries no bearer token.
var ErrMissingToken = errors.New("missing bearer token")

// Auth verifies an HS256 bearer token and stores its subject as the user id.
// Requests without a valid token are rejected with 401 LOGIN_REQUIRED.
func Auth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := ParseToken(secret, c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(model.ErrorResponse{
				Error:   model.ErrCodeLoginRequired,
				Message: "login required",
			})
		}
		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user id, or 0 when the request is anonymous.
func UserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(userIDKey).(int64)
	return id
}

// ParseToken validates an "Authorization: Bearer <jwt>" header value and returns the subject as a user id.
func ParseToken(secret []byte, header string) (int64, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return 0, errors.New("invalid subject")
	}
	return userID, nil
}

// IssueToken signs an HS256 token for the user valid for ttl.
func IssueToken(secret []byte, userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
