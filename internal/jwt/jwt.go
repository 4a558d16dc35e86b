package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Issuer issues the JWT
const Issuer = "holdem-server"

// Audience is the intended JWT audience
const Audience = "holdem"

// ErrNoSigningKey is returned by Sign when only the public key was loaded
var ErrNoSigningKey = errors.New("no private key was loaded")

// Keys signs and validates player credentials
type Keys struct {
	publicKey  *rsa.PublicKey
	privateKey *rsa.PrivateKey
}

// NewKeys returns keys that can both sign and validate
func NewKeys(privateKey *rsa.PrivateKey) *Keys {
	return &Keys{
		publicKey:  &privateKey.PublicKey,
		privateKey: privateKey,
	}
}

// LoadKeys reads PEM encoded keys from disk
// privatePath may be empty for a process that only validates
func LoadKeys(publicPath, privatePath string) (*Keys, error) {
	b, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, err
	}

	k := &Keys{}
	if k.publicKey, err = jwtgo.ParseRSAPublicKeyFromPEM(b); err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	if privatePath == "" {
		return k, nil
	}

	if b, err = os.ReadFile(privatePath); err != nil {
		return nil, err
	}

	if k.privateKey, err = jwtgo.ParseRSAPrivateKeyFromPEM(b); err != nil {
		return nil, fmt.Errorf("could not parse RSA private key: %w", err)
	}

	return k, nil
}

// Sign will sign a JWT for the user ID
// A zero ttl creates a credential that does not expire
func (k *Keys) Sign(userID int64, ttl time.Duration) (string, error) {
	if k.privateKey == nil {
		return "", ErrNoSigningKey
	}

	now := time.Now()
	claims := jwtgo.RegisteredClaims{
		Audience: jwtgo.ClaimStrings{Audience},
		ID:       uuid.New().String(),
		IssuedAt: jwtgo.NewNumericDate(now),
		Issuer:   Issuer,
		Subject:  strconv.FormatInt(userID, 10),
	}

	if ttl > 0 {
		claims.ExpiresAt = jwtgo.NewNumericDate(now.Add(ttl))
	}

	return jwtgo.NewWithClaims(jwtgo.SigningMethodRS256, claims).SignedString(k.privateKey)
}

// ValidUserID will validate a signed JWT and return the user it was issued to
func (k *Keys) ValidUserID(signedString string) (int64, error) {
	token, err := jwtgo.ParseWithClaims(signedString, &jwtgo.RegisteredClaims{}, func(token *jwtgo.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtgo.SigningMethodRSA); !ok {
			return nil, errors.New("expected RS256 signing method")
		}

		return k.publicKey, nil
	})

	if err != nil {
		return 0, err
	}

	if !token.Valid {
		logrus.Warn("token claims were not valid. did not expect to reach this code")
		return 0, errors.New("claims were not valid")
	}

	claims, ok := token.Claims.(*jwtgo.RegisteredClaims)
	if !ok {
		return 0, fmt.Errorf("expected jwt.RegisteredClaims, got %T", token.Claims)
	}

	if !containsAudience(claims.Audience, Audience) {
		return 0, errors.New("invalid audience")
	}

	if claims.Issuer != Issuer {
		return 0, errors.New("invalid issuer")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid subject")
	}

	return id, nil
}

func containsAudience(audiences jwtgo.ClaimStrings, target string) bool {
	for _, aud := range audiences {
		if aud == target {
			return true
		}
	}

	return false
}
