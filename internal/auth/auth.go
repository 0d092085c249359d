// Package auth issues and validates identities: registered accounts with
// bcrypt-hashed passwords and HS256 JWTs, plus short-lived tokens for
// anonymous visitors.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"strangerlink/backend/internal/models"
)

const (
	tokenTTL    = 72 * time.Hour
	minPassword = 6
	issuer      = "strangerlink-service"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// UserStore is the slice of storage the auth service needs.
type UserStore interface {
	SaveUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
}

// Claims are the validated contents of a token. Exactly one of UserID
// and AnonID is set.
type Claims struct {
	UserID string
	AnonID string
}

type Service struct {
	store     UserStore
	jwtSecret []byte
}

func NewService(store UserStore, jwtSecret string) *Service {
	return &Service{store: store, jwtSecret: []byte(jwtSecret)}
}

// Register creates a new account and returns the user plus a signed
// token. Duplicate emails and short passwords are rejected.
func (s *Service) Register(email, password string) (*models.User, string, error) {
	if len(password) < minPassword {
		return nil, "", ErrPasswordTooShort
	}

	if existing, err := s.store.GetUserByEmail(email); err == nil && existing != nil {
		return nil, "", ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := s.store.SaveUser(user); err != nil {
		return nil, "", err
	}

	token, err := s.generateToken("user_id", user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the user plus a signed token.
func (s *Service) Login(email, password string) (*models.User, string, error) {
	user, err := s.store.GetUserByEmail(email)
	if err != nil || user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.generateToken("user_id", user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GenerateAnonToken signs a token carrying an anonymous id, letting
// unregistered visitors hold a session without an account.
func (s *Service) GenerateAnonToken(anonID string) (string, error) {
	return s.generateToken("anon_id", anonID)
}

// ValidateToken parses and verifies a token, returning its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	if v, ok := mapClaims["user_id"].(string); ok {
		claims.UserID = v
	}
	if v, ok := mapClaims["anon_id"].(string); ok {
		claims.AnonID = v
	}
	if claims.UserID == "" && claims.AnonID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) generateToken(idClaim, id string) (string, error) {
	claims := jwt.MapClaims{
		idClaim: id,
		"exp":   time.Now().Add(tokenTTL).Unix(),
		"iss":   issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
