package rtctoken

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer produces short-lived join credentials for a media channel.
//
// Rules:
// - No media-provider SDK calls outside this package.
// - Issue must respect ctx deadlines; callers bound it with a short timeout
//   and treat a failure as retryable (the session stays RINGING).
type Issuer interface {
	Issue(ctx context.Context, channelID string) (Credential, error)
}

// Credential is what a client presents to the media provider to join a
// channel. The platform never sees media packets; it only vouches for the
// join.
type Credential struct {
	Token     string    `json:"token"`
	ChannelID string    `json:"channel_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

var ErrInvalidChannel = errors.New("rtctoken: channel id is required")

type channelClaims struct {
	jwt.RegisteredClaims

	ChannelID string `json:"channel_id"`
}

// HMACIssuer signs channel tokens locally with a shared secret the media
// edge verifies. Local signing keeps Accept's external dependency surface
// at zero in the default deployment; swapping in a vendor SDK adapter only
// requires another Issuer implementation.
type HMACIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  func() time.Time
}

func NewHMACIssuer(secret, issuer string, ttl time.Duration) (*HMACIssuer, error) {
	if secret == "" {
		return nil, errors.New("rtctoken: secret is required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &HMACIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		clock:  time.Now,
	}, nil
}

func (i *HMACIssuer) Issue(ctx context.Context, channelID string) (Credential, error) {
	if channelID == "" {
		return Credential{}, ErrInvalidChannel
	}
	if err := ctx.Err(); err != nil {
		return Credential{}, err
	}

	now := i.clock().UTC()
	exp := now.Add(i.ttl)

	claims := channelClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   channelID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
		ChannelID: channelID,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return Credential{}, err
	}

	return Credential{Token: signed, ChannelID: channelID, ExpiresAt: exp}, nil
}

// Verify parses a channel token and returns its channel id.
// Used by ops tooling and tests; the media edge does its own verification.
func (i *HMACIssuer) Verify(tokenString string, now time.Time) (string, error) {
	var claims channelClaims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if _, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return i.secret, nil
	}); err != nil {
		return "", err
	}
	if claims.ChannelID == "" {
		return "", ErrInvalidChannel
	}
	return claims.ChannelID, nil
}
