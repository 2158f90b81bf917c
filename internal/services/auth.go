package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/nishad-backend/internal/data/repos"
	types "github.com/yungbote/nishad-backend/internal/domain"
	domainagg "github.com/yungbote/nishad-backend/internal/domain/aggregates"
	"github.com/yungbote/nishad-backend/internal/domain/user"
	"github.com/yungbote/nishad-backend/internal/platform/apierr"
	"github.com/yungbote/nishad-backend/internal/platform/ctxutil"
	"github.com/yungbote/nishad-backend/internal/platform/dbctx"
	"github.com/yungbote/nishad-backend/internal/platform/logger"
)

const minPasswordLength = 8

var (
	errInvalidCredentials = apierr.New(http.StatusUnauthorized, "invalid_credentials", errors.New("invalid email or password"))
	errInvalidRefresh     = apierr.New(http.StatusUnauthorized, "refresh_failed", errors.New("refresh token is invalid or expired"))

	validate = validator.New()
)

type JWTClaims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	SessionID string `json:"sid"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, u *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RegisterUser creates a SUPPORTER account. Roles are raised by administrators only.
func (as *authService) RegisterUser(ctx context.Context, u *types.User) error {
	const op = "Auth.Register"
	if u == nil {
		return invalid(op, "missing user")
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.Phone = strings.TrimSpace(u.Phone)
	// Bare addresses only; "Name <addr>" is refused.
	if err := validate.Var(u.Email, "required,email"); err != nil {
		return invalid(op, "invalid email")
	}
	if u.FirstName == "" {
		return invalid(op, "missing first_name")
	}
	if len(u.Password) < minPasswordLength {
		return invalid(op, "password must be at least %d characters", minPasswordLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.Password = string(hashed)
	u.ID = uuid.New()
	u.Role = user.RoleSupporter

	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, u.Email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return domainagg.NewError(domainagg.CodeConflict, op, "email already registered", nil)
		}
		if _, err := as.userRepo.Create(dbc, []*types.User{u}); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", "", errInvalidCredentials
	}
	u, err := as.userRepo.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return "", "", fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return "", "", errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", "", errInvalidCredentials
	}

	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := as.userTokenRepo.FullDeleteExpired(dbc, as.now()); err != nil {
			as.log.Warn("failed to prune expired tokens", "error", err)
		}
		var err error
		accessToken, refreshToken, err = as.issueSession(dbc, u)
		return err
	})
	if err != nil {
		return "", "", err
	}
	as.log.Info("user logged in", "user_id", u.ID)
	return accessToken, refreshToken, nil
}

// RefreshUser rotates both tokens of the session that owns refreshToken.
func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", "", errInvalidRefresh
	}
	var accessToken, newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := as.userTokenRepo.GetByRefreshTokens(dbc, []string{refreshToken})
		if err != nil {
			return fmt.Errorf("failed to load refresh token: %w", err)
		}
		if len(found) == 0 || found[0] == nil {
			return errInvalidRefresh
		}
		existing := found[0]
		if !existing.ExpiresAt.After(as.now()) {
			if err := as.userTokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
				return fmt.Errorf("failed to delete expired token: %w", err)
			}
			return errInvalidRefresh
		}
		u, err := as.userRepo.GetByID(dbc, existing.UserID)
		if err != nil {
			return fmt.Errorf("failed to load user for refresh: %w", err)
		}
		if u == nil {
			return errInvalidRefresh
		}
		accessToken, newRefreshToken, err = as.issueSession(dbc, u)
		if err != nil {
			return err
		}
		if err := as.userTokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
			return fmt.Errorf("failed to remove old refresh token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		return errUnauthenticated
	}
	if err := as.userTokenRepo.FullDeleteByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{rd.SessionID}); err != nil {
		return fmt.Errorf("failed to delete user token: %w", err)
	}
	return nil
}

func (as *authService) issueSession(dbc dbctx.Context, u *types.User) (string, string, error) {
	sessionID := uuid.New()
	accessToken, err := as.generateAccessToken(u, sessionID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken := uuid.New().String()
	row := &types.UserToken{
		ID:           sessionID,
		UserID:       u.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    as.now().Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*types.UserToken{row}); err != nil {
		return "", "", fmt.Errorf("failed to create user token: %w", err)
	}
	return accessToken, refreshToken, nil
}

func (as *authService) generateAccessToken(u *types.User, sessionID uuid.UUID) (string, error) {
	now := as.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		Role:      string(u.Role),
		SessionID: sessionID.String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// SetContextFromToken verifies the JWT and its session row. The role is read
// from the user row so a demotion takes effect on the next request.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, errors.New("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}
	dbc := dbctx.Context{Ctx: ctx}
	found, err := as.userTokenRepo.GetByAccessTokens(dbc, []string{tokenString})
	if err != nil {
		return ctx, fmt.Errorf("failed to load session: %w", err)
	}
	if len(found) == 0 || found[0] == nil || found[0].UserID != userID {
		return ctx, errors.New("session not found")
	}
	u, err := as.userRepo.GetByID(dbc, userID)
	if err != nil {
		return ctx, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return ctx, errors.New("user not found")
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Role:        string(u.Role),
		SessionID:   found[0].ID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
