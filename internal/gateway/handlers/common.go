package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mercato-system/internal/fault"
)

// writeError maps the service error taxonomy onto HTTP statuses. Business
// errors keep their message; internal failures return a generic one.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch fault.KindOf(err) {
	case fault.KindInvalidInput, fault.KindInvalidState:
		status = http.StatusBadRequest
	case fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindForbidden:
		status = http.StatusForbidden
	case fault.KindConflict:
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"message": fault.MessageOf(err)})
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + param})
		return 0, false
	}
	return id, true
}
