package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	userCtx             = "userId"

	errMissingAuth = "missing Authorization header"
	errAuthFormat  = "invalid Authorization header format"
	errBadToken    = "invalid or expired token"
)

// authenticate resolves the bearer token of the request. On failure it
// returns the message to send with a 401.
func (h *Handler) authenticate(c *gin.Context) (int, string) {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		return 0, errMissingAuth
	}

	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return 0, errAuthFormat
	}

	userId, err := h.services.ParseToken(token)
	if err != nil {
		return 0, errBadToken
	}
	return userId, ""
}

func (h *Handler) userIdMiddleware(c *gin.Context) {
	userId, msg := h.authenticate(c)
	if msg != "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
		return
	}

	c.Set(userCtx, userId)
	c.Next()
}

// operator returns the authenticated user id, or 0 on public routes.
func operator(c *gin.Context) int {
	return c.GetInt(userCtx)
}
