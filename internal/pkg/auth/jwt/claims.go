package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for PairChat.
// It includes standard claims required by the JWT specification and the custom
// claims necessary for identifying users within the messaging system.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the unique identifier of the verified user. Everything downstream of
	// the Identity Gate trusts this value.
	ID string `json:"id"`

	// Name is the display name of the user, carried for convenience so clients
	// can render the session owner without an extra lookup.
	Name string `json:"name,omitempty"`
}
