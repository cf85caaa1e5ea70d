package http

import (
	"net/http"
	"time"

	"github.com/Drayarch/genlayer-intelligent-contracts/configs"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type TokenHandler struct {
	cfg     configs.Config
	clients *security.ClientRegistry
}

func NewTokenHandler(cfg configs.Config, clients *security.ClientRegistry) *TokenHandler {
	return &TokenHandler{cfg: cfg, clients: clients}
}

// IssueToken handles POST /v1/token (form).
// Accepts: client_id, client_secret. Perms come from the client record, not
// the request.
func (h *TokenHandler) IssueToken(c *gin.Context) {
	clientID := c.PostForm("client_id")
	clientSecret := c.PostForm("client_secret")
	if clientID == "" || clientSecret == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_client"})
		return
	}

	cl, ok := h.clients.Authenticate(clientID, clientSecret)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_client"})
		return
	}

	ttl := h.cfg.Security.TokenTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":      h.cfg.Security.Issuer,
		"aud":      h.cfg.Security.Audience,
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
		"clientID": cl.ID,
		"perms":    cl.Perms,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.Security.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": signed,
		"token_type":   "Bearer",
		"expires_in":   int(ttl.Seconds()),
	})
}
