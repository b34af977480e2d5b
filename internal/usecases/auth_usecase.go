package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"farmlink/internal/entities"
	"farmlink/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type UserStore interface {
	Create(ctx context.Context, user *entities.User) error
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

type AuthUsecase struct {
	userRepo  UserStore
	jwtSecret []byte
	now       func() time.Time
}

func NewAuthUsecase(repo UserStore, secret string) *AuthUsecase {
	return &AuthUsecase{
		userRepo:  repo,
		jwtSecret: []byte(secret),
		now:       time.Now,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	PhotoURL string
	Role     string
}

func (uc *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*entities.User, error) {
	if in.Role != entities.RoleWholesaler && in.Role != entities.RoleVendor {
		return nil, ErrInvalidRole
	}
	return uc.create(ctx, in)
}

func (uc *AuthUsecase) create(ctx context.Context, in RegisterInput) (*entities.User, error) {
	email := normalizeEmail(in.Email)
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entities.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashed),
		Name:         strings.TrimSpace(in.Name),
		PhotoURL:     strings.TrimSpace(in.PhotoURL),
		Role:         in.Role,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Login checks credentials and issues a signed token
func (uc *AuthUsecase) Login(ctx context.Context, email, password string) (string, *entities.User, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := uc.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken signs an HS256 token carrying user_id, role and name
func (uc *AuthUsecase) IssueToken(user *entities.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"name":    user.Name,
		"exp":     uc.now().Add(tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// EnsureAdmin creates an admin account if none exists with that email (called on startup)
func (uc *AuthUsecase) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := uc.create(ctx, RegisterInput{
		Email:    email,
		Password: password,
		Name:     "Administrator",
		Role:     entities.RoleAdmin,
	})
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
