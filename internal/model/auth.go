package model

import "github.com/golang-jwt/jwt/v5"

// Token roles
const (
	RoleAdmin     = "admin"
	RoleResponder = "responder"
)

// AdminClaims are JWT claims for survey administrators
type AdminClaims struct {
	AdminID string `json:"adminId"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// ResponderClaims are JWT claims for a responder scoped to one survey
type ResponderClaims struct {
	SurveyID    string `json:"surveyId"`
	ResponderID string `json:"responderId"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token   string `json:"token"`
	AdminID string `json:"adminId"`
}
