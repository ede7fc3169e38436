package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/turnos/internal/domain/models"
	"github.com/mamadbah2/turnos/internal/repository"
)

const issuer = "turnos"

// Claims are the JWT claims issued at login. The user id travels in "sub".
type Claims struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service verifies credentials and issues/validates bearer tokens.
type Service struct {
	store  repository.Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewService builds an auth service signing HS256 tokens with secret.
func NewService(store repository.Store, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Login checks username/password against active users and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, models.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", models.Identity{}, fmt.Errorf("%w: missing credentials", models.ErrInvalidArgument)
	}

	var user models.User
	err := s.store.WithTransaction(ctx, func(tx repository.Tx) error {
		var err error
		user, err = tx.FindUserByUsername(ctx, username)
		return err
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "", models.Identity{}, fmt.Errorf("%w: wrong username or password", models.ErrUnauthorized)
	case err != nil:
		return "", models.Identity{}, fmt.Errorf("find user: %w", err)
	}

	if !user.Active {
		s.logger.Info("login for inactive user", zap.String("username", username))
		return "", models.Identity{}, fmt.Errorf("%w: wrong username or password", models.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", models.Identity{}, fmt.Errorf("%w: wrong username or password", models.ErrUnauthorized)
	}

	id := models.Identity{UserID: user.ID, Username: user.Username, Name: user.Name, Role: user.Role}
	token, err := s.IssueToken(id)
	if err != nil {
		return "", models.Identity{}, err
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return token, id, nil
}

// IssueToken signs a token for the identity.
func (s *Service) IssueToken(id models.Identity) (string, error) {
	now := s.now()
	claims := &Claims{
		Username: id.Username,
		Name:     id.Name,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a bearer token and returns the identity it carries.
func (s *Service) Verify(tokenString string) (models.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return models.Identity{}, fmt.Errorf("%w: invalid token", models.ErrUnauthorized)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return models.Identity{}, fmt.Errorf("%w: invalid subject", models.ErrUnauthorized)
	}
	if claims.Role == "" {
		return models.Identity{}, fmt.Errorf("%w: missing role", models.ErrUnauthorized)
	}

	return models.Identity{UserID: userID, Username: claims.Username, Name: claims.Name, Role: claims.Role}, nil
}
