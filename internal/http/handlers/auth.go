package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/plantdoctor/internal/accounts"
	"github.com/geocoder89/plantdoctor/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// resetRequestedMessage is returned whether or not the email exists.
const resetRequestedMessage = "Se o e-mail estiver cadastrado, você receberá um link para redefinir a senha."

type AccountService interface {
	Register(ctx context.Context, name, email, password string) (user.User, error)
	Login(ctx context.Context, email, password string) (accounts.LoginResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
}

type InterestChecker interface {
	HasInterests(ctx context.Context, userID string) (bool, error)
}

type AuthHandler struct {
	accounts  AccountService
	interests InterestChecker
}

func NewAuthHandler(svc AccountService, interests InterestChecker) *AuthHandler {
	return &AuthHandler{accounts: svc, interests: interests}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,max=72"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// bcrypt dominates this request
	cctx, cancel := requestCtx(ctx, 5*time.Second)
	defer cancel()

	_, err := h.accounts.Register(cctx, req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrInvalidInput):
			RespondBadRequest(ctx, "Nome, e-mail e senha são obrigatórios", nil)
		case errors.Is(err, accounts.ErrEmailTaken):
			RespondConflict(ctx, "email_taken", "Este e-mail já está em uso")
		default:
			RespondInternal(ctx, "Erro no servidor. Tente novamente mais tarde.", err)
		}
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Cadastro realizado com sucesso!"})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, 5*time.Second)
	defer cancel()

	res, err := h.accounts.Login(cctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			RespondUnauthorized(ctx, "invalid_credentials", "E-mail ou senha incorretos.")
			return
		}
		RespondInternal(ctx, "Could not log in", err)
		return
	}

	hasCultures, err := h.interests.HasInterests(cctx, res.User.ID)
	if err != nil {
		RespondInternal(ctx, "Could not log in", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token":        res.Token,
		"has_cultures": hasCultures,
		"user_role":    res.User.Role,
	})
}

func (h *AuthHandler) RequestPasswordReset(ctx *gin.Context) {
	email, ok := ctx.GetQuery("email")
	if !ok {
		RespondBadRequest(ctx, "email query parameter is required", nil)
		return
	}

	cctx, cancel := requestCtx(ctx, 5*time.Second)
	defer cancel()

	// the response never depends on the outcome
	if err := h.accounts.RequestPasswordReset(cctx, email); err != nil && !errors.Is(err, accounts.ErrInvalidInput) {
		logFrom(ctx).ErrorContext(ctx.Request.Context(), "password reset request failed", "err", err, "request_id", requestIDFrom(ctx))
	}

	ctx.JSON(http.StatusOK, gin.H{"message": resetRequestedMessage})
}

func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestCtx(ctx, 5*time.Second)
	defer cancel()

	err := h.accounts.ResetPassword(cctx, req.Token, req.NewPassword)
	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, gin.H{"message": "Senha redefinida com sucesso!"})
	case errors.Is(err, accounts.ErrInvalidInput):
		RespondBadRequest(ctx, "Token e nova senha são obrigatórios", nil)
	case errors.Is(err, accounts.ErrInvalidResetToken):
		RespondUnauthorized(ctx, "invalid_reset_token", "Token inválido.")
	case errors.Is(err, accounts.ErrResetTokenExpired):
		RespondUnauthorized(ctx, "expired_reset_token", "Token expirado.")
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "Usuário não encontrado.")
	default:
		RespondInternal(ctx, "Could not reset password", err)
	}
}
