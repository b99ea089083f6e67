package middleware

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

// TokenVerifier verifies Firebase ID tokens. *auth.Client implements it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// VerifyIDToken checks a Firebase ID token and returns the UID and email.
func VerifyIDToken(ctx context.Context, verifier TokenVerifier, idToken string) (string, string, error) {
	token, err := verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", "", fmt.Errorf("invalid or expired ID token: %w", err)
	}
	email, _ := token.Claims["email"].(string)
	return token.UID, email, nil
}
