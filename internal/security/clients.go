package security

import (
	"crypto/subtle"

	"github.com/Drayarch/genlayer-intelligent-contracts/configs"
)

// Client is a caller of this service: a contract backend or tooling that
// exchanges its credentials for a token.
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"keys.read","services.read"}
	Enabled bool
}

// ClientRegistry holds the configured API clients. Built once from config so
// tests can run isolated instances; no package-level state.
type ClientRegistry struct {
	clients map[string]Client
}

func NewClientRegistry(cfg []configs.ClientConfig) *ClientRegistry {
	clients := make(map[string]Client, len(cfg))
	for _, c := range cfg {
		clients[c.ID] = Client{
			ID:      c.ID,
			Secret:  c.Secret,
			Perms:   append([]string(nil), c.Perms...),
			Enabled: c.Enabled,
		}
	}
	return &ClientRegistry{clients: clients}
}

// Authenticate checks id/secret and returns the client on success. The
// secret comparison is constant-time.
func (r *ClientRegistry) Authenticate(id, secret string) (Client, bool) {
	cl, ok := r.clients[id]
	if !ok || !cl.Enabled {
		return Client{}, false
	}
	if subtle.ConstantTimeCompare([]byte(cl.Secret), []byte(secret)) != 1 {
		return Client{}, false
	}
	return cl, true
}

func (r *ClientRegistry) Len() int { return len(r.clients) }
