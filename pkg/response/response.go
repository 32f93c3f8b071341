package response

import (
	"github.com/gin-gonic/gin"
)

// The wire format is the legacy envelope the desktop clients already speak:
// {"success": bool, "reason": "..."} on failure, endpoint-specific bodies
// with "success": true otherwise.

type Ack struct {
	Success bool `json:"success"`
}

type Failure struct {
	Success bool              `json:"success"`
	Reason  string            `json:"reason"`
	Details map[string]string `json:"details,omitempty"`
}

// OK writes the bare success acknowledgment.
func OK(c *gin.Context, status int) {
	c.JSON(status, Ack{Success: true})
}

// Fail writes a failure envelope and the given status.
func Fail(c *gin.Context, status int, reason string) {
	c.JSON(status, Failure{Success: false, Reason: reason})
}

// FailDetails is Fail with per-field validation messages attached.
func FailDetails(c *gin.Context, status int, reason string, details map[string]string) {
	c.JSON(status, Failure{Success: false, Reason: reason, Details: details})
}

// AbortFail is Fail for middleware: it also stops the handler chain.
func AbortFail(c *gin.Context, status int, reason string) {
	c.AbortWithStatusJSON(status, Failure{Success: false, Reason: reason})
}
