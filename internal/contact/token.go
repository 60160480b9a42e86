package contact

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"silosremeco/backend/internal/domain"
	"silosremeco/backend/internal/xid"
)

const (
	tokenIssuer  = "silosremeco"
	tokenSubject = "contact-form"
)

// TokenIssuer signs short-lived tokens that the contact form must echo back.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if secret == "" {
		secret = "dev-change-me"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue() (domain.ContactTokenResponse, error) {
	issuedAt := t.now().UTC()
	expiresAt := issuedAt.Add(t.ttl)
	claims := jwtlib.RegisteredClaims{
		ID:        xid.New("form"),
		Subject:   tokenSubject,
		Issuer:    tokenIssuer,
		IssuedAt:  jwtlib.NewNumericDate(issuedAt),
		ExpiresAt: jwtlib.NewNumericDate(expiresAt),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return domain.ContactTokenResponse{}, err
	}
	return domain.ContactTokenResponse{FormToken: signed, ExpiresAt: expiresAt.Format(time.RFC3339)}, nil
}

func (t *TokenIssuer) Verify(tokenStr string) error {
	claims := &jwtlib.RegisteredClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(tok *jwtlib.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	},
		jwtlib.WithValidMethods([]string{"HS256"}),
		jwtlib.WithIssuer(tokenIssuer),
		jwtlib.WithSubject(tokenSubject),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(t.now),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid form token")
	}
	return nil
}
