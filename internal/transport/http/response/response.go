package response

import "github.com/gin-gonic/gin"

// The JSON error shape of the report endpoint: {"error": "..."}.
func Err(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"error": message})
}
