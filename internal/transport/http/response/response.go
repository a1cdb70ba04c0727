package response

import "github.com/gin-gonic/gin"

const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternal           = "INTERNAL"
)

// Success responses wrap their payload in {"data": ...}; failures carry
// {"message", "code"}. Handlers never mix the two shapes.
type Envelope struct {
	Data interface{} `json:"data"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, Envelope{Data: data})
}

func Error(c *gin.Context, httpStatus int, code, message string) {
	c.JSON(httpStatus, ErrorBody{
		Message: message,
		Code:    code,
	})
}
