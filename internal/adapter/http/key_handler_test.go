package http

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Drayarch/genlayer-intelligent-contracts/configs"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/adapter/http/middleware"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/audit"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/registry"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/security"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/usecase"
)

func testConfig() configs.Config {
	var cfg configs.Config
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.Issuer = "keyserver"
	cfg.Security.Audience = "genlayer-contracts"
	cfg.Security.TokenTTL = time.Minute
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T, cfg configs.Config, sink audit.Sink, seal gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := registry.MustNew(registry.Defaults())
	access := usecase.NewKeyAccess(reg, sink)
	clients := security.NewClientRegistry([]configs.ClientConfig{
		{ID: "demo-contract", Secret: "demo-secret", Perms: []string{"keys.read", "services.read"}, Enabled: true},
		{ID: "readonly-dashboard", Secret: "dashboard-secret", Perms: []string{"services.read"}, Enabled: true},
	})

	kh := NewKeyHandler(access)
	th := NewTokenHandler(cfg, clients)
	authz := middleware.NewAuthz(cfg)
	return NewRouter(kh, th, authz, quietLogger(), nil, seal)
}

func obtainToken(t *testing.T, r *gin.Engine, id, secret string) string {
	t.Helper()
	form := "client_id=" + id + "&client_secret=" + secret
	req := httptest.NewRequest(nethttp.MethodPost, "/v1/token", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, nethttp.StatusOK, w.Code, "token request failed: %s", w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(nethttp.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssueTokenRejectsBadCredentials(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil, nil)

	form := "client_id=demo-contract&client_secret=wrong"
	req := httptest.NewRequest(nethttp.MethodPost, "/v1/token", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
}

func TestGetKey(t *testing.T) {
	sink := &recordingSink{}
	r := newTestRouter(t, testConfig(), sink, nil)
	token := obtainToken(t, r, "demo-contract", "demo-secret")

	w := get(r, "/v1/keys/weather", token)
	require.Equal(t, nethttp.StatusOK, w.Code)

	var resp struct {
		Service string `json:"service"`
		Key     string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "weather", resp.Service)
	assert.Equal(t, "bbe7e79a414f003442cd9662246f7be7", resp.Key)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "demo-contract", sink.events[0].ClientID)
	assert.Equal(t, audit.OutcomeHit, sink.events[0].Outcome)
}

func TestGetKeyUnknownService(t *testing.T) {
	sink := &recordingSink{}
	r := newTestRouter(t, testConfig(), sink, nil)
	token := obtainToken(t, r, "demo-contract", "demo-secret")

	w := get(r, "/v1/keys/stocks", token)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "service_not_found")

	require.Len(t, sink.events, 1)
	assert.Equal(t, audit.OutcomeMiss, sink.events[0].Outcome)
}

func TestGetKeyRequiresToken(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil, nil)

	w := get(r, "/v1/keys/weather", "")
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)

	w = get(r, "/v1/keys/weather", "not-a-jwt")
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
}

func TestGetKeyRequiresPermission(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil, nil)
	token := obtainToken(t, r, "readonly-dashboard", "dashboard-secret")

	w := get(r, "/v1/keys/weather", token)
	assert.Equal(t, nethttp.StatusForbidden, w.Code)
}

func TestListServices(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil, nil)
	token := obtainToken(t, r, "readonly-dashboard", "dashboard-secret")

	w := get(r, "/v1/services", token)
	require.Equal(t, nethttp.StatusOK, w.Code)

	var resp struct {
		Services []string `json:"services"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"price", "social", "weather"}, resp.Services)
}

func TestServiceInfoOmitsKey(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil, nil)
	token := obtainToken(t, r, "readonly-dashboard", "dashboard-secret")

	w := get(r, "/v1/services/weather", token)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "OpenWeatherMap")
	assert.NotContains(t, w.Body.String(), "bbe7e79a414f003442cd9662246f7be7")

	w = get(r, "/v1/services/stocks", token)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil, nil)
	w := get(r, "/healthz", "")
	assert.Equal(t, nethttp.StatusOK, w.Code)
}

func TestSealedResponses(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	pri, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	sealer, err := security.NewSealer(&security.CryptoMaterial{
		AESKey: key, RSAPub: &pri.PublicKey, RSAPri: pri,
	})
	require.NoError(t, err)

	r := newTestRouter(t, testConfig(), nil, middleware.NewResponseSealer(sealer).Seal())
	token := obtainToken(t, r, "demo-contract", "demo-secret")

	w := get(r, "/v1/keys/weather", token)
	require.Equal(t, nethttp.StatusOK, w.Code)

	// the wire form is an envelope, not the plain payload
	assert.NotContains(t, w.Body.String(), "bbe7e79a414f003442cd9662246f7be7")

	env, err := security.DecodeEnvelope(w.Body.Bytes())
	require.NoError(t, err)
	plain, err := security.OpenEnvelope(sealer, env)
	require.NoError(t, err)

	var resp struct {
		Service string `json:"service"`
		Key     string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(plain, &resp))
	assert.Equal(t, "bbe7e79a414f003442cd9662246f7be7", resp.Key)
}

func TestSealedResponsesPassErrorsThrough(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	pri, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	sealer, err := security.NewSealer(&security.CryptoMaterial{
		AESKey: key, RSAPub: &pri.PublicKey, RSAPri: pri,
	})
	require.NoError(t, err)

	r := newTestRouter(t, testConfig(), nil, middleware.NewResponseSealer(sealer).Seal())
	token := obtainToken(t, r, "demo-contract", "demo-secret")

	w := get(r, "/v1/keys/stocks", token)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "service_not_found", "error bodies stay plain")
}

type recordingSink struct {
	events []audit.AccessEvent
}

func (s *recordingSink) Record(_ context.Context, ev audit.AccessEvent) error {
	s.events = append(s.events, ev)
	return nil
}
