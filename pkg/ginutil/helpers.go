package ginutil

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ParamID extracts a UUID path parameter. ok is false when the value is not
// a well-formed UUID, which no stored row can match.
func ParamID(c *gin.Context, key string) (string, bool) {
	value := strings.TrimSpace(c.Param(key))
	if _, err := uuid.Parse(value); err != nil {
		return "", false
	}
	return value, true
}

// BindOptionalJSON binds a JSON body when one is present; an empty body
// leaves obj untouched
func BindOptionalJSON(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
