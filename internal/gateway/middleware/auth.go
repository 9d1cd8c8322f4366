package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"mercato-system/internal/utils"
)

const (
	ClaimsKey = "claims"

	RoleAdmin = "admin"
	RoleShop  = "shop"
)

// JWTAuth verifies the bearer token and stashes its claims on the context.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer token"})
			return
		}

		claims, err := utils.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireAdmin gates a route group to admin tokens.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil || claims.Role != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "admin role required"})
			return
		}
		c.Next()
	}
}

// RequireShop gates a route group to shop tokens, or to an admin
// impersonating a shop via the shopId query parameter.
func RequireShop() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "shop role required"})
			return
		}
		switch claims.Role {
		case RoleShop:
			if claims.ShopID == 0 {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "token has no shop"})
				return
			}
		case RoleAdmin:
			if _, err := strconv.ParseInt(c.Query("shopId"), 10, 64); err != nil {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "shopId query parameter required for admin access"})
				return
			}
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "shop role required"})
			return
		}
		c.Next()
	}
}

func ClaimsFrom(c *gin.Context) *utils.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*utils.Claims)
	if !ok {
		return nil
	}
	return claims
}

// ShopIDFrom resolves the acting shop: the token's shop for shop users, or
// the impersonated shopId for admins.
func ShopIDFrom(c *gin.Context) int64 {
	claims := ClaimsFrom(c)
	if claims == nil {
		return 0
	}
	if claims.Role == RoleShop {
		return claims.ShopID
	}
	id, _ := strconv.ParseInt(c.Query("shopId"), 10, 64)
	return id
}
