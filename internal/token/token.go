package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blogify/internal/domain"
)

// Service emite y valida session tokens firmados.
type Service struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("invalid token")

// SessionTTL es la validez fija de un session token.
const SessionTTL = 24 * time.Hour

func NewService(secret string) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    SessionTTL,
		issuer: "blogify",
	}
}

// Issue firma un token con el id del usuario y expiración fija.
// No guarda estado: la validez es solo firma + expiración.
func (s *Service) Issue(user domain.User) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrInvalidToken
	}
	now := time.Now().UTC()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Validate devuelve el id de usuario de un token válido. Entrada
// malformada o expirada produce ErrInvalidToken, nunca un panic.
func (s *Service) Validate(tokenString string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return "", ErrInvalidToken
	}
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.UserID) == "" || claims.Subject != claims.UserID {
		return "", ErrInvalidToken
	}
	if claims.Issuer != s.issuer {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// HashSecret calcula el digest determinístico usado para códigos OTP.
// Los OTP duran minutos y se usan una vez; bcrypt queda para passwords.
func HashSecret(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// VerifyDigest compara en tiempo constante un secreto contra su digest.
func VerifyDigest(plain, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(HashSecret(plain)), []byte(digest)) == 1
}
