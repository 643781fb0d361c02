package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"siso/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const msgErroInterno = "Erro interno do servidor"

// requestFields tags ev with the request id, the matched route and, on
// /api routes, the user id of the caller.
func requestFields(ev *zerolog.Event, c *gin.Context) *zerolog.Event {
	ev = ev.Str("request_id", c.GetString(RequestIDKey)).
		Str("method", c.Request.Method).
		Str("route", c.FullPath())
	if caller := GetCaller(c); caller != nil {
		ev = ev.Uint("user_id", caller.UserID)
	}
	return ev
}

// ErrorHandler answers errors attached with c.Error (database failures,
// report rendering) with a generic 500. The cause only reaches the log.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}
		requestFields(log.Error(), c).
			Err(last.Err).
			Int("errors", len(c.Errors)).
			Msg("request failed")

		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(msgErroInterno))
		}
	}
}

// Recovery turns a handler panic into the same generic 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			requestFields(log.Error(), c).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(msgErroInterno))
		}()
		c.Next()
	}
}

// Logger writes one line per request; 5xx responses are logged at warn.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		if status >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		requestFields(ev, c).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
