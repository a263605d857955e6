package application

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/marginalfriend/my-garage/internal/auth/domain"
)

// Claims 访问令牌载荷，id 与 roles 是下游授权判断的唯一依据
type Claims struct {
	ID    uint              `json:"id"`
	Roles []domain.RoleName `json:"roles"`
	jwt.RegisteredClaims
}

// TokenService 负责访问令牌的签发与校验
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService 创建令牌服务，ttl 为 0 时签发不过期令牌
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue 为账号签发令牌
func (s *TokenService) Issue(accountID uint, roles []domain.RoleName) (string, error) {
	claims := Claims{
		ID:    accountID,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if s.ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(s.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify 校验令牌签名并返回身份
func (s *TokenService) Verify(tokenString string) (domain.Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return domain.Identity{}, err
	}
	if !token.Valid {
		return domain.Identity{}, jwt.ErrTokenSignatureInvalid
	}
	return domain.Identity{AccountID: claims.ID, Roles: claims.Roles}, nil
}
