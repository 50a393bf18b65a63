package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/toggle-task/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/toggle-task/internal/common/crypto"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrMissingToken = errors.New("missing session token")
)

// Identity is the authenticated caller carried through the request context.
type Identity struct {
	UserID    string
	Username  string
	SessionID string
	ExpiresAt time.Time
}

type Issuer struct {
	secret      []byte
	ttl         time.Duration
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
}

func NewIssuer(secret string, ttl time.Duration, idGenerator commoncrypto.IDGenerator, clk clock.Clock) *Issuer {
	return &Issuer{
		secret:      []byte(secret),
		ttl:         ttl,
		idGenerator: idGenerator,
		clock:       clk,
	}
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a new session for the user. The returned identity carries the
// session id (jti) used for revocation.
func (i *Issuer) Issue(userID, username string) (string, Identity, error) {
	jti, err := i.idGenerator.NewID()
	if err != nil {
		return "", Identity{}, err
	}

	now := i.clock.Now()
	expiresAt := now.Add(i.ttl).Truncate(time.Second)
	claims := jwt.MapClaims{
		"sub": userID,
		"usr": username,
		"jti": jti,
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := t.SignedString(i.secret)
	if err != nil {
		return "", Identity{}, err
	}

	return token, Identity{
		UserID:    userID,
		Username:  username,
		SessionID: jti,
		ExpiresAt: expiresAt,
	}, nil
}

func (i *Issuer) Parse(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	parsed, err := jwt.Parse(
		token,
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return i.secret, nil
		},
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	username, _ := claims["usr"].(string)
	jti, _ := claims["jti"].(string)
	if sub == "" || username == "" || jti == "" {
		return Identity{}, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		UserID:    sub,
		Username:  username,
		SessionID: jti,
		ExpiresAt: exp.Time.UTC(),
	}, nil
}
