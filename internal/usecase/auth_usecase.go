package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"electrohub/internal/domain/model"
	repo "electrohub/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// アクセストークンの発行。実装はmain.goで組み立てて注入する。
type TokenIssuer interface {
	Issue(userID int64, role model.Role, now time.Time) (token string, expiresAt time.Time, err error)
}

type AuthUsecase struct {
	userRepo   repo.UserRepository
	issuer     TokenIssuer
	bcryptCost int
}

func NewAuthUsecase(userRepo repo.UserRepository, issuer TokenIssuer) *AuthUsecase {
	return &AuthUsecase{
		userRepo:   userRepo,
		issuer:     issuer,
		bcryptCost: 12,
	}
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string

	//USERかSELLERのみ（ADMINは作れない）
	Role model.Role
}

type RegisterOutput struct {
	ID    int64      `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        RegisterOutput `json:"user"`
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (RegisterOutput, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return RegisterOutput{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if strings.TrimSpace(in.Name) == "" {
		return RegisterOutput{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if len(in.Password) < 8 {
		return RegisterOutput{}, NewHTTPError(http.StatusBadRequest, "password too short")
	}

	role := in.Role
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleUser && role != model.RoleSeller {
		return RegisterOutput{}, NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	//重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if existing != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.bcryptCost)
	if err != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return RegisterOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return RegisterOutput{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}, nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//存在しない場合もメッセージは同じにする
	if user == nil || !user.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	now := time.Now()
	token, expiresAt, err := u.issuer.Issue(user.ID, user.Role, now)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//最終ログインを更新（失敗してもログインは成立）
	user.LastLoginAt = &now
	_ = u.userRepo.Update(ctx, user)

	return LoginOutput{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User: RegisterOutput{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
	}, nil
}
