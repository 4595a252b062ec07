package handlers

import (
	"context"
	"net/http"

	"progress-service/internal/service"

	"github.com/gin-gonic/gin"
)

type CertificateHandler struct {
	Service *service.CertificateService
}

func NewCertificateHandler(s *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{Service: s}
}

func (h *CertificateHandler) List(c *gin.Context) {
	certs, err := h.Service.List(context.Background(), learnerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"certificates": certs})
}

// Revoke is admin-only; the role check sits in the route middleware.
func (h *CertificateHandler) Revoke(c *gin.Context) {
	cert, err := h.Service.Revoke(context.Background(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}
