package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONData sends a payload inside the marketplace response envelope
func JSONData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"data": data,
	})
}

// JSONErrorMessage sends an error inside the marketplace response envelope.
// Clients read errors[0].message first, then the top-level message.
func JSONErrorMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"errors":     []gin.H{{"message": message}},
		"message":    message,
		"statusCode": status,
	})
}
