package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coursehub/platform/pkg/response"
)

// StageError rejects a request. Status is the HTTP status written to the
// client.
type StageError struct {
	Status  int
	Message string
}

func (e *StageError) Error() string { return e.Message }

func Reject(status int, message string) *StageError {
	return &StageError{Status: status, Message: message}
}

// Stage inspects or decorates a request. A non-nil result stops the pipeline.
type Stage func(c *gin.Context) *StageError

// Pipeline runs stages in order and aborts on the first rejection.
func Pipeline(stages ...Stage) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, stage := range stages {
			if serr := stage(c); serr != nil {
				status := serr.Status
				if status == 0 {
					status = http.StatusInternalServerError
				}
				response.Error(c, status, status, serr.Message)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
