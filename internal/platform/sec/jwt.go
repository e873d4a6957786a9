// Copyright (c) 2026 RootLink. All rights reserved.

// Package sec provides the password hashing and token signing used by the mock API.
//
// # Architecture
//
// Tokens are HS256 JWTs signed with a shared secret. The console never
// inspects them; it treats the token as an opaque bearer string.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned by [TokenService.VerifyToken] for an expired token.
var ErrTokenExpired = errors.New("sec: token expired")

// AuthClaims is the payload of an access token.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom claims are abbreviated to keep the token small.
	UserID string `json:"uid"`
	Phone  string `json:"phn"`
}

// TokenService signs and verifies HS256 access tokens.
type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService creates a service signing with secret.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: signing secret is required")
	}
	return &TokenService{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// GenerateAccessToken issues a token for userID valid for timeToLive.
func (service *TokenService) GenerateAccessToken(userID, phone string, timeToLive time.Duration) (string, time.Time, error) {
	currentTime := service.now()
	expiresAt := currentTime.Add(timeToLive)
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Phone:  phone,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signedToken, expiresAt, nil
}

// VerifyToken checks the signature, issuer and expiry of tokenString.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (any, error) {
		return service.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}
	return claims, nil
}
