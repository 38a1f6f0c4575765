package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	identity     services.IdentityService
	certificates services.CertificateService
}

func NewUserHandler(identity services.IdentityService, certificates services.CertificateService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler:  NewBaseHandler(logger),
		identity:     identity,
		certificates: certificates,
	}
}

// GetMe returns the caller's local user record
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	h.LogRequest(c, "Getting current user")

	user, err := h.identity.Resolve(c.Request.Context(), identityFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListMyCertificates returns the caller's certificates, newest first
// @Summary List my certificates
// @Tags users
// @Produce json
// @Success 200 {array} models.Certificate
// @Failure 401 {object} ErrorResponse
// @Router /me/certificates [get]
func (h *UserHandler) ListMyCertificates(c *gin.Context) {
	h.LogRequest(c, "Listing certificates")

	certificates, err := h.certificates.ListForUser(c.Request.Context(), identityFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, certificates)
}
