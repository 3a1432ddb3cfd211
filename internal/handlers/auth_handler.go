package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aeeconecta/aee-service/internal/services"
	"github.com/aeeconecta/aee-service/internal/session"
	"github.com/aeeconecta/aee-service/internal/utils"
	"github.com/aeeconecta/aee-service/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	service services.AuthService
}

func NewAuthHandler(service services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// SessionResponse is returned by the login endpoints.
type SessionResponse struct {
	Token       string        `json:"token"`
	State       session.State `json:"state"`
	RF          string        `json:"rf"`
	Nome        string        `json:"nome,omitempty"`
	Perfil      string        `json:"perfil,omitempty"`
	Role        string        `json:"role,omitempty"`
	Permissions []string      `json:"permissions,omitempty"`
	// Privileged tells the client to show the management panels.
	Privileged bool `json:"privileged"`
}

func newSessionResponse(sess *session.Session) SessionResponse {
	resp := SessionResponse{
		Token:  sess.Token,
		State:  sess.State,
		RF:     sess.RF,
		Nome:   sess.Nome,
		Perfil: sess.Perfil,
		Role:   string(sess.Role),
	}
	if sess.IsLoggedIn() {
		resp.Privileged = sess.Role.IsPrivileged()
		for _, p := range sess.Role.Permissions() {
			resp.Permissions = append(resp.Permissions, string(p))
		}
	}
	return resp
}

// Login
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req validator.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(sess))
}

// SetPassword completes a first access.
// @Router /auth/password [post]
func (h *AuthHandler) SetPassword(c *gin.Context) {
	var req validator.SetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	sess, err := h.service.SetPassword(c.Request.Context(), getSessionToken(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(sess))
}

// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req validator.ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), getSessionToken(c), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Senha alterada."})
}

// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), getSessionToken(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the current session.
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	sess, err := GetSessionFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess))
}
