package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// secretKey 是服务器用于签发和校验会话令牌的HS256密钥。
var secretKey []byte

// tokenTTL 是签发令牌的有效期。
var tokenTTL = 7 * 24 * time.Hour

// Claims 定义了会话令牌携带的声明。
// UserID 是认证协作方向领域逻辑提供的、已验证的用户身份。
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Configure 设置签名密钥和令牌有效期。
// secret为空时会生成一个随机密钥——这意味着重启后所有旧令牌失效，
// 仅适用于开发模式。
func Configure(secret string, ttl time.Duration) {
	if ttl > 0 {
		tokenTTL = ttl
	}
	if secret != "" {
		secretKey = []byte(secret)
		return
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("无法生成安全的会话密钥: " + err.Error())
	}
	secretKey = key
	logrus.Warnf("未配置会话密钥，已生成临时密钥 %s...（重启后旧令牌将失效）",
		base64.RawURLEncoding.EncodeToString(key[:6]))
}

// Issue 为指定用户签发一个新的会话令牌。
func Issue(userID string) (string, error) {
	if len(secretKey) == 0 {
		return "", errors.New("会话密钥尚未初始化")
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("无法签发会话令牌: %w", err)
	}
	return signed, nil
}

// Verify 校验令牌并返回其中的用户ID。
// 任何签名、算法或有效期问题都会返回错误。
func Verify(tokenString string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("意外的签名算法: %v", t.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.UserID == "" {
		return "", errors.New("无效的会话令牌")
	}
	return claims.UserID, nil
}
