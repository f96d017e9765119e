package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ticket-marketplace/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const callerIDKey = "caller_id"

// JWTAuth 驗證 Bearer token，並把 user id 放進 gin context
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing bearer token",
			})
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			logger.WithComponent("auth").Debug("Invalid token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		userID, err := userIDFromClaims(claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		c.Set(callerIDKey, userID)
		c.Next()
	}
}

// userIDFromClaims 先看 user_id，沒有時用 sub
func userIDFromClaims(claims jwt.MapClaims) (int64, error) {
	if raw, ok := claims["user_id"]; ok {
		switch v := raw.(type) {
		case float64:
			if v > 0 && v == float64(int64(v)) {
				return int64(v), nil
			}
		case string:
			return parseUserID(v)
		}
		return 0, fmt.Errorf("invalid user_id claim %v", raw)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}
	return parseUserID(sub)
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}

// CallerID 取得 JWTAuth 放進 context 的 user id
func CallerID(c *gin.Context) (int64, error) {
	v, ok := c.Get(callerIDKey)
	if !ok {
		return 0, errors.New("caller id not set")
	}
	id, ok := v.(int64)
	if !ok {
		return 0, errors.New("caller id has unexpected type")
	}
	return id, nil
}

// SetCallerID 讓測試或其他驗證方式直接指定呼叫者
func SetCallerID(c *gin.Context, id int64) {
	c.Set(callerIDKey, id)
}
