package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// QRClaims bind a check-in token to one activity
type QRClaims struct {
	jwt.RegisteredClaims
	ActivityID string    `json:"aid"`
	TokenType  TokenType `json:"token_type"`
}

// QRTokenService signs the short-lived tokens shown as QR codes at the
// venue. Scanning one stands in for a location fix.
type QRTokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewQRTokenService creates a QR token service. issuer should match the
// access-token issuer so a QR token offered as a bearer token fails on its
// type.
func NewQRTokenService(secret, issuer string, ttl time.Duration) *QRTokenService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &QRTokenService{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// Issue signs a token for activityID valid from now for the configured TTL
func (s *QRTokenService) Issue(activityID uuid.UUID, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.ttl)
	claims := &QRClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		ActivityID: activityID.String(),
		TokenType:  TokenTypeQR,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify checks the signature, the expiry at now and the activity binding
func (s *QRTokenService) Verify(tokenString string, activityID uuid.UUID, now time.Time) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &QRClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return mapParseError(err)
	}

	claims, ok := token.Claims.(*QRClaims)
	if !ok || !token.Valid {
		return ErrInvalidClaims
	}
	if claims.TokenType != TokenTypeQR {
		return ErrInvalidTokenType
	}
	if claims.ActivityID != activityID.String() {
		return ErrInvalidClaims
	}
	return nil
}
