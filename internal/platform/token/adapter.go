package token

import (
	"cityline/internal/platform/middleware"
)

// Adapter exposes the token service through the middleware.JWTValidator
// interface so the HTTP layer stays decoupled from JWT specifics.
type Adapter struct {
	service *Service
}

func NewAdapter(service *Service) *Adapter {
	return &Adapter{service: service}
}

func (a *Adapter) Validate(tokenString string) (*middleware.Claims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.Claims{
		Subject: claims.Subject,
		Role:    claims.Role,
	}, nil
}
