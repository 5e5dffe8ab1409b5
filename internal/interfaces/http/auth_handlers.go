package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/madadhq/invoice-financing/internal/application/service"
	"github.com/madadhq/invoice-financing/internal/errs"
)

// AuthHandlers contains the authentication HTTP handlers
type AuthHandlers struct {
	authService service.AuthService
	debug       bool
	logger      Logger
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(authService service.AuthService, debug bool, logger Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		debug:       debug,
		logger:      logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.debug, errs.Validation("email and password are required"))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.debug, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}
