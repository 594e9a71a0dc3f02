package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"storefront-api/services"
)

var statusByKind = map[services.Kind]int{
	services.KindValidation:      http.StatusBadRequest,
	services.KindUnauthorized:    http.StatusUnauthorized,
	services.KindForbidden:       http.StatusForbidden,
	services.KindNotFound:        http.StatusNotFound,
	services.KindConflict:        http.StatusConflict,
	services.KindTooManyAttempts: http.StatusTooManyRequests,
}

// respond writes the success envelope with payload merged in.
func respond(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": true, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string, fields map[string]string) {
	body := gin.H{"success": false, "message": message}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	c.AbortWithStatusJSON(status, body)
}

// respondError maps a service error onto the failure envelope. Unexpected
// errors are logged and only described in development.
func (h *Handler) respondError(c *gin.Context, err error) {
	var se *services.Error
	if errors.As(err, &se) {
		fail(c, statusByKind[se.Kind], se.Message, se.Fields)
		return
	}
	_ = c.Error(err)
	log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	msg := "Something went wrong, please try again later"
	if h.exposeErrors {
		msg = err.Error()
	}
	fail(c, http.StatusInternalServerError, msg, nil)
}

// paramID reads a positive numeric path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (uint, bool) {
	return parseID(c, name, c.Param(name))
}

func parseID(c *gin.Context, name, raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, "Invalid "+name, map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}
