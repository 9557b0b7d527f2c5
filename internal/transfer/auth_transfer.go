package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	Subject string `json:"sub_id"`
	jwt.RegisteredClaims
}

type TokenRequest struct {
	APIKey string `json:"apiKey"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}
