package api

import (
	"context"
	"strconv"
	"time"

	"github.com/khanghh/clubhub/internal/settings"
	"github.com/khanghh/clubhub/internal/users"
	"github.com/khanghh/clubhub/model"
)

type UserService interface {
	Register(ctx context.Context, email string, password string) (*users.RegisterResult, error)
	ResendCode(ctx context.Context, email string) (*users.RegisterResult, error)
	Verify(ctx context.Context, email string, code string) (*users.Session, error)
	Login(ctx context.Context, email string, password string) (*users.Session, error)
	GetUserByID(ctx context.Context, userID uint) (*model.User, error)
}

type SettingsService interface {
	Snapshot(ctx context.Context) (*settings.Snapshot, error)
	Create(ctx context.Context, kind settings.Kind, data map[string]interface{}) (interface{}, error)
	Update(ctx context.Context, kind settings.Kind, id uint, data map[string]interface{}) (interface{}, error)
	Delete(ctx context.Context, kind settings.Kind, id uint) error
}

const statusPendingVerification = "PENDING_VERIFICATION"

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type pendingResponse struct {
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type userResponse struct {
	UserID     string `json:"userId"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"isVerified"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func newUserResponse(user *model.User) userResponse {
	return userResponse{
		UserID:     strconv.FormatUint(uint64(user.ID), 10),
		Email:      user.Email,
		Role:       user.Role.String(),
		IsVerified: user.IsVerified,
	}
}

type createConfigRequest struct {
	Type string                 `json:"type" validate:"required"`
	Data map[string]interface{} `json:"data" validate:"required"`
}

type updateConfigRequest struct {
	Type string                 `json:"type" validate:"required"`
	ID   interface{}            `json:"id" validate:"required"`
	Data map[string]interface{} `json:"data" validate:"required"`
}

type deleteConfigRequest struct {
	Type string      `json:"type" validate:"required"`
	ID   interface{} `json:"id" validate:"required"`
}

type configMutationResponse struct {
	Message string      `json:"message"`
	Created interface{} `json:"created,omitempty"`
	Updated interface{} `json:"updated,omitempty"`
}
