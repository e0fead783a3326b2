package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/pipeline"
)

const (
	// Response codes carried in the envelope next to the HTTP status
	CodeSuccess          = 0
	CodeInvalidRequest   = 40001
	CodeQuotaExhausted   = 42901
	CodeRateLimited      = 42902
	CodeInternal         = 50001
	CodeStoreUnavailable = 50301

	// Path parameters
	ParamUserID = "userId"
	ParamGoalID = "goalId"
)

// Response is the envelope of every API response.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON envelope with the given status code.
func Respond(c *gin.Context, status int, code int, message string, data interface{}) {
	c.JSON(status, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	Respond(c, http.StatusOK, CodeSuccess, "success", data)
}

// Error writes an envelope without data.
func Error(c *gin.Context, status int, code int, message string) {
	Respond(c, status, code, message, nil)
}

// WriteError maps engine errors to HTTP responses.
// Validation failures are 400; store failures are 503 and safe to retry.
func WriteError(c *gin.Context, err error) {
	var (
		verr *pipeline.ValidationError
		perr *pipeline.PersistenceError
	)

	switch {
	case errors.As(err, &verr):
		Error(c, http.StatusBadRequest, CodeInvalidRequest, verr.Error())
	case errors.As(err, &perr):
		logrus.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		Error(c, http.StatusServiceUnavailable, CodeStoreUnavailable, "storage temporarily unavailable, please retry")
	default:
		logrus.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		Error(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}
