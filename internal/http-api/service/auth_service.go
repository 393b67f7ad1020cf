package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"libraryhub/internal/config"
	"libraryhub/internal/http-api/errs"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/middleware/auth"
)

var (
	ErrNameInUse          = errs.Conflict("username already in use")
	ErrEmailInUse         = errs.Conflict("email already in use")
	ErrInvalidCredentials = errs.Unauthorized("invalid credentials")
	ErrInvalidToken       = errs.Unauthorized("invalid token")
	ErrExpiredToken       = errs.Unauthorized("token has expired")
)

// Claims is the payload of an access token.
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	RegisterAdmin(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (token string, user *models.User, err error)
	IssueToken(user *models.User) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	// EnsureAdmin creates an ADMIN account unless the username is already taken.
	EnsureAdmin(ctx context.Context, username, email, password string) (user *models.User, created bool, err error)
}

type authService struct {
	userRepo       repository.UserRepository
	jwtSecret      []byte
	method         jwt.SigningMethod
	accessTokenTTL time.Duration
	dummyHash      string
	now            clock
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	method := jwt.GetSigningMethod(strings.ToUpper(cfg.JWTAlgorithm))
	if method == nil {
		method = jwt.SigningMethodHS256
	}

	// compared against for unknown usernames so login time does not leak which users exist
	dummyHash, _ := auth.HashPassword(uuid.NewString())

	return &authService{
		userRepo:       userRepo,
		jwtSecret:      []byte(cfg.JWTSecret),
		method:         method,
		accessTokenTTL: cfg.AccessTokenTTL(),
		dummyHash:      dummyHash,
		now:            utcNow,
	}
}

func (s *authService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	return s.create(ctx, username, email, password, models.RoleUser)
}

func (s *authService) RegisterAdmin(ctx context.Context, username, email, password string) (*models.User, error) {
	return s.create(ctx, username, email, password, models.RoleAdmin)
}

func (s *authService) create(ctx context.Context, username, email, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, errs.Validation(err.Error())
		}
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			if taken := s.checkAvailable(ctx, username, email); taken != nil {
				return nil, taken
			}
			return nil, errs.Conflict("username or email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// checkAvailable reports ErrNameInUse or ErrEmailInUse when either key is taken.
func (s *authService) checkAvailable(ctx context.Context, username, email string) error {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return ErrNameInUse
	} else if !repository.IsNotFound(err) {
		return fmt.Errorf("find user by username: %w", err)
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return ErrEmailInUse
	} else if !repository.IsNotFound(err) {
		return fmt.Errorf("find user by email: %w", err)
	}
	return nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !repository.IsNotFound(err) {
			return "", nil, fmt.Errorf("find user: %w", err)
		}
		_ = auth.VerifyPassword(s.dummyHash, password)
		return "", nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == 0 || claims.Username == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, username, email, password string) (*models.User, bool, error) {
	existing, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err == nil {
		return existing, false, nil
	}
	if !repository.IsNotFound(err) {
		return nil, false, fmt.Errorf("find user: %w", err)
	}

	user, err := s.RegisterAdmin(ctx, username, email, password)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}
