package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const verifierBytes = 32

// NewRefreshToken mints a "selector.verifier" refresh token. The raw
// string goes to the client; selector and verifier hash go to the
// database so the token can be revoked without being stored in clear.
func NewRefreshToken() (raw string, selector string, verifierHash string, err error) {
	selector = uuid.NewString()

	buf := make([]byte, verifierBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", "", err
	}
	verifier := base64.RawURLEncoding.EncodeToString(buf)

	hashed, err := bcrypt.GenerateFromPassword([]byte(verifier), bcrypt.DefaultCost)
	if err != nil {
		return "", "", "", err
	}

	return selector + "." + verifier, selector, string(hashed), nil
}

// SplitRefreshToken separates the raw token into its selector and
// verifier parts.
func SplitRefreshToken(raw string) (selector string, verifier string, err error) {
	parts := strings.SplitN(raw, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed refresh token")
	}
	return parts[0], parts[1], nil
}

func MatchRefreshToken(verifierHash string, verifier string) bool {
	return bcrypt.CompareHashAndPassword([]byte(verifierHash), []byte(verifier)) == nil
}
