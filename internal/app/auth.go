package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Great2008/reads/internal/domain"
)

// AuthService signs users up, verifies credentials and issues the
// bearer tokens the transport layer authenticates with.
type AuthService struct {
	store    Store
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(store Store, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{store: store, secret: []byte(secret), tokenTTL: tokenTTL}
}

// SignUp creates the account and its zero-balance wallet in one
// transaction and returns a token for the new user. The very first
// account becomes admin so a fresh deployment can manage content.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	err = s.store.InTx(ctx, func(tx Store) error {
		count, err := tx.CountUsers(ctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		user.IsAdmin = count == 0

		if err := tx.CreateUser(ctx, &user); err != nil {
			return err
		}
		return tx.CreateWallet(ctx, &domain.Wallet{
			UserID:    user.ID,
			UpdatedAt: user.CreatedAt,
		})
	})
	if err != nil {
		return "", err
	}
	return s.issueToken(user.ID)
}

// LogIn verifies the credentials and returns a fresh token. Unknown
// emails and wrong passwords fail identically so the endpoint does not
// leak which accounts exist.
func (s *AuthService) LogIn(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return "", domain.Unauthorized("invalid email or password")
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", domain.Unauthorized("invalid email or password")
	}
	return s.issueToken(user.ID)
}

// Verify parses a bearer token and loads its user. The user row is
// re-read on every call so admin changes take effect immediately.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (domain.User, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
	)
	if err != nil || !token.Valid {
		return domain.User{}, domain.Unauthorized("invalid or expired token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return domain.User{}, domain.Unauthorized("invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.User{}, domain.Unauthorized("invalid or expired token")
	}

	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return domain.User{}, domain.Unauthorized("invalid or expired token")
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *AuthService) issueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
