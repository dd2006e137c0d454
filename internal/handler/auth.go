package handler

import (
	"net/http"

	"inventorypos/internal/dto"
	"inventorypos/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary      Log in and receive an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.LoginRequest true "Credentials"
// @Success      200 {object} dto.LoginResponse
// @Failure      401 {object} apierror.APIError
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateStaff godoc
// @Summary      Create a staff account (admin only)
// @Tags         staff
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateStaffRequest true "Staff member"
// @Success      201 {object} dto.StaffResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/staff [post]
func (h *AuthHandler) CreateStaff(c *gin.Context) {
	var req dto.CreateStaffRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateStaff(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListStaff godoc
// @Summary      List staff accounts (admin only)
// @Tags         staff
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.StaffResponse
// @Router       /v1/staff [get]
func (h *AuthHandler) ListStaff(c *gin.Context) {
	resp, err := h.svc.ListStaff(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
