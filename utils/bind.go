package utils

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
)

const rawBodyKey = "rawActionBody"

// SetRawBody stashes the request body so the action dispatcher can read the
// action name and each handler can still bind its own request struct.
func SetRawBody(c *gin.Context, body []byte) {
	c.Set(rawBodyKey, body)
}

// BindAction unmarshals the stashed body into dst.
func BindAction(c *gin.Context, dst interface{}) error {
	raw, exists := c.Get(rawBodyKey)
	if !exists {
		return errors.New("no request body")
	}
	body, ok := raw.([]byte)
	if !ok {
		return errors.New("invalid request body")
	}
	return json.Unmarshal(body, dst)
}
