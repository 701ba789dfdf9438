package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/itemapi/pkg/token"
)

// contextKeyUserID は認証済みユーザーIDをGinコンテキストに保持するためのキー。
const contextKeyUserID = "user_id"

// Auth はベアラートークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストにユーザーIDを設定して後続ハンドラへ進む。
//
// 失敗理由（ヘッダー欠落・形式不正・署名不一致・期限切れ）はすべて同一の
// 401レスポンスに集約し、クライアントに診断情報を漏らさない。
func Auth(verifier token.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}

		// "Bearer <token>" の2番目のセグメントを取り出す。
		// セグメントが無い場合は空文字列のまま検証に回し、そこで失敗させる。
		var tokenString string
		if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 {
			tokenString = parts[1]
		}

		identity, err := verifier.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}

		c.Set(contextKeyUserID, identity.UserID)
		c.Next()
	}
}

// GetUserID はGinコンテキストから認証済みユーザーIDを取得する。
// Authミドルウェアが事前に適用されている必要がある。未設定の場合は0を返す。
func GetUserID(c *gin.Context) int64 {
	v, _ := c.Get(contextKeyUserID)
	if id, ok := v.(int64); ok {
		return id
	}
	return 0
}
