package tokenstore

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"ShopAssist/pkg/cache"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevoked      = errors.New("token has been revoked (logout)")
)

// Claims is the part of a bearer token the API cares about.
type Claims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// Manager issues and verifies HS256 tokens and remembers revoked ids until
// the token would have expired anyway.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	revoked *cache.Cache
	now     func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: cache.New(100000, time.Minute),
		now:     time.Now,
	}
}

func (m *Manager) Close() {
	m.revoked.Close()
}

// Issue signs a token whose subject is userID.
func (m *Manager) Issue(userID uint) (string, Claims, error) {
	c := Claims{
		UserID:    userID,
		JTI:       uuid.NewString(),
		ExpiresAt: m.now().Add(m.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"exp": c.ExpiresAt.Unix(),
		"jti": c.JTI,
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, c, nil
}

// Parse verifies signature, expiry and revocation.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// only accept HMAC signing
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	jti, _ := claims["jti"].(string)
	if m.IsRevoked(jti) {
		return nil, ErrRevoked
	}

	var uid uint64
	switch sub := claims["sub"].(type) {
	case string:
		uid, err = strconv.ParseUint(sub, 10, 64)
	case float64:
		// jwt lib may parse numeric as float64
		uid = uint64(sub)
	default:
		err = errors.New("missing subject")
	}
	if err != nil || uid == 0 {
		return nil, ErrInvalidToken
	}

	out := &Claims{UserID: uint(uid), JTI: jti}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// Revoke blocks jti until exp.
func (m *Manager) Revoke(jti string, exp time.Time) {
	if jti == "" {
		return
	}
	ttl := exp.Sub(m.now())
	if ttl <= 0 {
		return
	}
	m.revoked.Set(jti, struct{}{}, ttl)
}

func (m *Manager) IsRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	_, ok := m.revoked.Get(jti)
	return ok
}
