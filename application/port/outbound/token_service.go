package outbound

import "time"

type TokenClaims struct {
	UserID      string `json:"id"`
	Email       string `json:"email"`
	Designation string `json:"designation"`
}

type TokenService interface {
	GenerateAccessToken(claims TokenClaims) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	TTL() time.Duration
}
