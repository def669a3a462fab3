package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// CredentialProvider 凭证提供者
// Token 返回不透明的 bearer 凭证,UserID 返回当前用户 ID;
// 任一为空表示尚未登录
type CredentialProvider interface {
	Token() string
	UserID() string
}

// StaticCredentials 静态凭证,主要用于测试和显式注入
type StaticCredentials struct {
	token  string
	userID string
}

// NewStaticCredentials 创建静态凭证
func NewStaticCredentials(token, userID string) *StaticCredentials {
	return &StaticCredentials{token: token, userID: userID}
}

// Token 返回凭证
func (c *StaticCredentials) Token() string { return c.token }

// UserID 返回用户 ID
func (c *StaticCredentials) UserID() string { return c.userID }

// TokenCredentials 从 JWT 凭证的声明中解析用户身份
// 只提取身份提示,不做签名验证,验证是服务端的职责
type TokenCredentials struct {
	token  string
	userID string
}

// NewTokenCredentials 创建基于 JWT 的凭证
func NewTokenCredentials(token string) *TokenCredentials {
	c := &TokenCredentials{token: token}
	c.userID = extractUserID(token)
	return c
}

// Token 返回凭证
func (c *TokenCredentials) Token() string { return c.token }

// UserID 返回从 sub 声明解析出的用户 ID
func (c *TokenCredentials) UserID() string { return c.userID }

// extractUserID 解析 token 中的 sub 声明,缺失时回退到 preferred_username
func extractUserID(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ""
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if name, ok := claims["preferred_username"].(string); ok {
		return name
	}
	return ""
}
