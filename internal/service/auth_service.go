package service

import (
	"crypto/subtle"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"surveyservice/internal/apperr"
	"surveyservice/internal/model"
)

const (
	adminTokenTTL     = 12 * time.Hour
	responderTokenTTL = 30 * 24 * time.Hour
)

// AuthService issues and validates admin and responder tokens
type AuthService struct {
	adminUsername string
	adminPassword string
	jwtSecret     []byte
	clock         clock.Clock
}

// NewAuthService creates a new auth service
func NewAuthService(adminUsername, adminPassword, secret string, clk clock.Clock) *AuthService {
	return &AuthService{
		adminUsername: adminUsername,
		adminPassword: adminPassword,
		jwtSecret:     []byte(secret),
		clock:         clk,
	}
}

// Login validates admin credentials and returns a token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
	if !userOK || !passOK {
		return nil, apperr.Authorization("AuthService.Login", apperr.KeyInvalidCredentials)
	}

	adminID := "admin_" + uuid.New().String()[:8]
	now := s.clock.Now()
	claims := &model.AdminClaims{
		AdminID: adminID,
		Role:    model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(adminTokenTTL)),
		},
	}

	token, err := s.sign(claims)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, AdminID: adminID}, nil
}

// ValidateAdminToken validates an admin JWT and returns claims
func (s *AuthService) ValidateAdminToken(tokenString string) (*model.AdminClaims, error) {
	claims := &model.AdminClaims{}
	if err := s.parse(tokenString, claims); err != nil || claims.Role != model.RoleAdmin {
		return nil, apperr.Authorization("AuthService.ValidateAdminToken", apperr.KeyInvalidToken)
	}
	return claims, nil
}

// GenerateResponderToken creates a survey-scoped token for a responder
func (s *AuthService) GenerateResponderToken(surveyID, responderID string) (string, error) {
	now := s.clock.Now()
	return s.sign(&model.ResponderClaims{
		SurveyID:    surveyID,
		ResponderID: responderID,
		Role:        model.RoleResponder,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(responderTokenTTL)),
		},
	})
}

// ValidateResponderToken validates a responder JWT and returns claims
func (s *AuthService) ValidateResponderToken(tokenString string) (*model.ResponderClaims, error) {
	claims := &model.ResponderClaims{}
	if err := s.parse(tokenString, claims); err != nil || claims.Role != model.RoleResponder {
		return nil, apperr.Authorization("AuthService.ValidateResponderToken", apperr.KeyInvalidToken)
	}
	return claims, nil
}

func (s *AuthService) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperr.Internal("AuthService.sign", err)
	}
	return signed, nil
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenSignatureInvalid
	}
	return nil
}
