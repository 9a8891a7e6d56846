package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondInvalid -> 400 with the per-field messages as data, so a form can be re-rendered
func RespondInvalid(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, JSONResponse{
		Status:  false,
		Message: "Please correct the errors below.",
		Data:    fields,
	})
}
