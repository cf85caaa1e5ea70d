package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/adapter/http/middleware"
	domain "github.com/Drayarch/genlayer-intelligent-contracts/internal/entity"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/usecase"
	"github.com/gin-gonic/gin"
)

type KeyHandler struct {
	access *usecase.KeyAccess
}

func NewKeyHandler(access *usecase.KeyAccess) *KeyHandler {
	return &KeyHandler{access: access}
}

type getKeyResp struct {
	Service string `json:"service"`
	Key     string `json:"key"`
}

// GetKey resolves a service identifier to its key. A miss is a plain 404;
// there is no fallback key.
func (h *KeyHandler) GetKey(c *gin.Context) {
	service := c.Param("service")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	out, err := h.access.GetKey(ctx, usecase.GetKeyInput{
		Service:  domain.ServiceID(service),
		ClientID: middleware.ClientID(c),
		Remote:   c.ClientIP(),
	})
	middleware.ObserveLookup(service, err == nil)

	if err != nil {
		if errors.Is(err, domain.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "service_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	c.JSON(http.StatusOK, getKeyResp{
		Service: out.Service.String(),
		Key:     out.Key,
	})
}

func (h *KeyHandler) ListServices(c *gin.Context) {
	ids := h.access.ListServices(c.Request.Context())
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, id.String())
	}
	c.JSON(http.StatusOK, gin.H{"services": names})
}

// GetServiceInfo returns the key-free description of a service.
func (h *KeyHandler) GetServiceInfo(c *gin.Context) {
	service := c.Param("service")

	info, err := h.access.ServiceInfo(c.Request.Context(), domain.ServiceID(service))
	if err != nil {
		if errors.Is(err, domain.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "service_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusOK, info)
}
