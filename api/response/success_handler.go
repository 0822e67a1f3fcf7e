package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleSuccess answers 200 with data in the envelope.
func HandleSuccess(c *gin.Context, data any, message string) {
	ok(c, http.StatusOK, data, message)
}

// HandleCreated answers 201; used when an order is placed.
func HandleCreated(c *gin.Context, data any, message string) {
	ok(c, http.StatusCreated, data, message)
}

func ok(c *gin.Context, status int, data any, message string) {
	c.JSON(status, &Response{Success: true, Code: status, Data: data, Message: message, RequestID: GetRequestID(c)})
}
