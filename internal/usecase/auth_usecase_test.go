package usecase_test

import (
	"context"
	"testing"
	"time"

	"electrohub/internal/domain/model"
	"electrohub/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type AuthUserRepoMock struct{ mock.Mock }

func (m *AuthUserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *AuthUserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	panic("not used in AuthUsecase tests")
}

func (m *AuthUserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *AuthUserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// issuerStub は固定トークンを返す
type issuerStub struct {
	token string
	err   error
}

func (s issuerStub) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return s.token, now.Add(15 * time.Minute), nil
}

// =====================
// Register
// =====================

func TestAuthUsecase_Register_InvalidEmail(t *testing.T) {
	uc := usecase.NewAuthUsecase(new(AuthUserRepoMock), issuerStub{})

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email: "not-an-email", Name: "Taro", Password: "password123",
	})
	assertErrContains(t, err, "invalid email")
}

func TestAuthUsecase_Register_ShortPassword(t *testing.T) {
	uc := usecase.NewAuthUsecase(new(AuthUserRepoMock), issuerStub{})

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email: "taro@example.com", Name: "Taro", Password: "short",
	})
	assertErrContains(t, err, "password too short")
}

func TestAuthUsecase_Register_AdminRoleRejected(t *testing.T) {
	uc := usecase.NewAuthUsecase(new(AuthUserRepoMock), issuerStub{})

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email: "taro@example.com", Name: "Taro", Password: "password123",
		Role: model.RoleAdmin,
	})
	assertErrContains(t, err, "invalid role")
}

func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	repo := new(AuthUserRepoMock)
	uc := usecase.NewAuthUsecase(repo, issuerStub{})

	repo.On("FindByEmail", mock.Anything, "taro@example.com").
		Return(&model.User{ID: 1, Email: "taro@example.com"}, nil)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email: "taro@example.com", Name: "Taro", Password: "password123",
	})
	assertErrContains(t, err, "email already registered")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Register_Success(t *testing.T) {
	repo := new(AuthUserRepoMock)
	uc := usecase.NewAuthUsecase(repo, issuerStub{})

	//大文字・前後空白は正規化される
	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(nil, nil)

	var created *model.User
	repo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.User)
			created.ID = 1
		}).
		Return(nil)

	out, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email: "  Taro@Example.COM ", Name: "Taro", Password: "password123",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, "taro@example.com", out.Email)
	//ロール未指定はUSER
	assert.Equal(t, model.RoleUser, out.Role)

	//平文は保存されない
	assert.NotEqual(t, "password123", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password123")))
}

// =====================
// Login
// =====================

func TestAuthUsecase_Login_UnknownEmail(t *testing.T) {
	repo := new(AuthUserRepoMock)
	uc := usecase.NewAuthUsecase(repo, issuerStub{token: "tok"})

	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(nil, nil)

	_, err := uc.Login(context.Background(), usecase.LoginInput{
		Email: "taro@example.com", Password: "password123",
	})
	assertErrContains(t, err, "invalid credentials")
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	repo := new(AuthUserRepoMock)
	uc := usecase.NewAuthUsecase(repo, issuerStub{token: "tok"})

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{
		ID: 1, Email: "taro@example.com", PasswordHash: string(hash), IsActive: true,
	}, nil)

	//存在しないメールと同じメッセージを返す
	_, err := uc.Login(context.Background(), usecase.LoginInput{
		Email: "taro@example.com", Password: "wrong-password",
	})
	assertErrContains(t, err, "invalid credentials")
}

func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	repo := new(AuthUserRepoMock)
	uc := usecase.NewAuthUsecase(repo, issuerStub{token: "tok"})

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{
		ID: 1, Email: "taro@example.com", PasswordHash: string(hash), IsActive: false,
	}, nil)

	_, err := uc.Login(context.Background(), usecase.LoginInput{
		Email: "taro@example.com", Password: "password123",
	})
	assertErrContains(t, err, "invalid credentials")
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	repo := new(AuthUserRepoMock)
	uc := usecase.NewAuthUsecase(repo, issuerStub{token: "tok"})

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	repo.On("FindByEmail", mock.Anything, "taro@example.com").Return(&model.User{
		ID: 1, Email: "taro@example.com", Name: "Taro", Role: model.RoleUser,
		PasswordHash: string(hash), IsActive: true,
	}, nil)

	//最終ログイン更新はベストエフォート
	repo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 1 && u.LastLoginAt != nil
	})).Return(nil)

	out, err := uc.Login(context.Background(), usecase.LoginInput{
		Email: "taro@example.com", Password: "password123",
	})

	assert.NoError(t, err)
	assert.Equal(t, "tok", out.AccessToken)
	assert.Equal(t, int64(1), out.User.ID)
	assert.False(t, out.ExpiresAt.IsZero())

	repo.AssertExpectations(t)
}
