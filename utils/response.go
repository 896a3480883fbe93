package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every action answers a JSON object carrying at least "success". Domain
// failures (wrong password, blocked company, closed order window) are still
// HTTP 200 so the caller can tell them apart from transport errors.

// RespondOK answers success:true plus the given fields.
func RespondOK(c *gin.Context, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// RespondFail answers success:false with a message and optional extra
// fields (blocked, reason, orderTimeRestricted and friends).
func RespondFail(c *gin.Context, message string, fields gin.H) {
	body := gin.H{"success": false, "message": message}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// RespondError is for transport-level problems: malformed body, missing
// auth, server faults. These do use HTTP status codes.
func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{
		"success": false,
		"message": err.Error(),
	})
}
