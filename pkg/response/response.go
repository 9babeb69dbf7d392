package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Fail 失败响应（400）
func Fail(c *gin.Context, message string, data any) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Message: message, Data: data})
}

// FailWithStatus 指定状态码的失败响应
func FailWithStatus(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}
