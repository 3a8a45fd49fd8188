package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims carries the participant identity asserted by the messaging
// gateway. The gateway authenticates end users on its side and forwards a
// short-lived signed token; this service never checks passwords itself.
type IdentityClaims struct {
	ParticipantID string `json:"pid"`
	DisplayName   string `json:"name"`
	jwt.RegisteredClaims
}
