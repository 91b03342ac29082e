// internal/middleware/helpers.go
package middleware

import (
	"leadflow-service/internal/domain/user"

	"github.com/gin-gonic/gin"
)

// MustGetActor gets the authenticated actor from context or panics. Only
// valid on routes behind Auth().
func MustGetActor(c *gin.Context) user.Actor {
	id, exists := c.Get("user_id")
	if !exists {
		panic("user_id not found in context")
	}
	return user.Actor{
		ID:   id.(int64),
		Role: user.Role(c.GetString("role")),
	}
}

// MustGetJTI gets the token id from context or panics.
func MustGetJTI(c *gin.Context) string {
	jti, exists := c.Get("jti")
	if !exists {
		panic("jti not found in context")
	}
	return jti.(string)
}
