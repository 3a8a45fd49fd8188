package service

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/supply-desk-api/internal/models"
	"github.com/noah-isme/supply-desk-api/pkg/config"
	appErrors "github.com/noah-isme/supply-desk-api/pkg/errors"
)

// IdentityService validates participant identity tokens minted by the
// messaging gateway. The gateway owns authentication; this service only
// verifies the shared-secret signature and expiry.
type IdentityService struct {
	secret []byte
	leeway jwt.ParserOption
}

// NewIdentityService constructs the validator.
func NewIdentityService(cfg config.IdentityConfig) *IdentityService {
	return &IdentityService{
		secret: []byte(cfg.Secret),
		leeway: jwt.WithLeeway(cfg.Leeway),
	}
}

// ValidateToken parses and verifies a gateway identity token.
func (s *IdentityService) ValidateToken(raw string) (*models.IdentityClaims, error) {
	claims := &models.IdentityClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), s.leeway)
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid identity token")
	}
	if claims.ParticipantID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "identity token missing participant id")
	}
	return claims, nil
}
