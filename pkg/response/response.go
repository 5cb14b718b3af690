// Package response holds the JSON envelope every domain route answers with.
package response

import (
	"github.com/gin-gonic/gin"
)

// ServiceResponse is the {success, message, payload} envelope the web client
// expects. Payload is omitted on failure.
type ServiceResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// Success writes a successful envelope.
func Success(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, ServiceResponse{Success: true, Payload: payload})
}

// Failure writes a failed envelope with the given message.
func Failure(c *gin.Context, status int, message string) {
	c.JSON(status, ServiceResponse{Success: false, Message: message})
}

// Abort is Failure for middleware: it stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ServiceResponse{Success: false, Message: message})
}
