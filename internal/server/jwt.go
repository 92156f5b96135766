package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// AccessTTL 访问令牌有效期
	AccessTTL = 24 * time.Hour

	tokenIssuer = "photohall-assets"
)

// ErrInvalidToken 令牌无效或已过期
var ErrInvalidToken = errors.New("令牌无效")

// Claims 访问令牌内容
type Claims struct {
	Viewer string `json:"viewer"`
	jwt.RegisteredClaims
}

// Signer 使用 HS256 签发和校验访问令牌
type Signer struct {
	key []byte
}

// NewSigner 使用给定密钥创建
func NewSigner(secret []byte) *Signer {
	return &Signer{key: secret}
}

// SignerFromEnv 从环境变量 ASSET_SECRET 读取密钥，不存在时使用开发密钥
func SignerFromEnv() *Signer {
	secret := os.Getenv("ASSET_SECRET")
	if secret == "" {
		secret = "photohall-dev-secret-change-in-production"
	}
	return NewSigner([]byte(secret))
}

// GenerateAccessToken 为访客签发令牌
func (s *Signer) GenerateAccessToken(viewer string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = AccessTTL
	}
	now := time.Now()
	claims := Claims{
		Viewer: viewer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   viewer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// VerifyAccessToken 校验令牌并返回访客名
func (s *Signer) VerifyAccessToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("%w: 缺少令牌", ErrInvalidToken)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.Viewer, nil
}
