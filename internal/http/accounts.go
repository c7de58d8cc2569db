package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshare/internal/auth"
	apperrors "github.com/mrlokans/bookshare/internal/errors"
	"github.com/mrlokans/bookshare/internal/services"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AccountsController serves registration, login and token refresh.
type AccountsController struct {
	accounts Accounts
}

func NewAccountsController(accounts Accounts) *AccountsController {
	return &AccountsController{accounts: accounts}
}

// Register creates an account and sends the confirmation email.
// POST /api/users
func (ac *AccountsController) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, bindingError(err))
		return
	}

	user, err := ac.accounts.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// ConfirmEmail is the target of the link in the confirmation email.
// GET /api/users/confirm/email?email=&token=
func (ac *AccountsController) ConfirmEmail(c *gin.Context) {
	address, token := c.Query("email"), c.Query("token")
	if address == "" || token == "" {
		fail(c, apperrors.Request("email and token are required"))
		return
	}

	if err := ac.accounts.ConfirmEmail(c.Request.Context(), address, token); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Email confirmed"})
}

// Login exchanges credentials for an access and refresh token pair.
// POST /api/login
func (ac *AccountsController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	tokens, err := ac.accounts.Login(c.Request.Context(), services.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// Refresh rotates the refresh token. The bearer access token may be expired.
// POST /api/token/refresh-token
func (ac *AccountsController) Refresh(c *gin.Context) {
	accessToken, ok := auth.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		fail(c, apperrors.Unauthorized("Authentication required"))
		return
	}

	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindingError(err))
		return
	}

	tokens, err := ac.accounts.Refresh(c.Request.Context(), accessToken, req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// Me returns the authenticated user.
// GET /api/users/me
func (ac *AccountsController) Me(c *gin.Context) {
	user, err := ac.accounts.CurrentUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
