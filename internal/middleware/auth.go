package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"siso/internal/apierror"
	"siso/internal/auth"
	"siso/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CallerKey = "caller"

// UsuarioLookup loads the token subject so deactivated accounts are cut
// off before their tokens expire.
type UsuarioLookup interface {
	FindByID(ctx context.Context, id uint) (*model.Usuario, error)
}

// JWTAuth validates the Bearer access token on every protected route and
// stores the resulting *auth.Caller. Browsers cannot set headers on
// websocket upgrades, so the token is also accepted as ?access_token=.
// When usuarios is non-nil the subject must still exist and be active.
func JWTAuth(tokens *auth.Tokens, usuarios UsuarioLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ""
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			raw = strings.TrimPrefix(header, "Bearer ")
		} else if q := c.Query("access_token"); q != "" {
			raw = q
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticação requerida"))
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token inválido ou expirado"))
			return
		}

		if usuarios != nil {
			u, err := usuarios.FindByID(c.Request.Context(), claims.UserID)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Usuário inexistente"))
				return
			case err != nil:
				_ = c.Error(err)
				c.Abort()
				return
			case !u.Ativo:
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Usuário inativo"))
				return
			}
		}

		c.Set(CallerKey, claims.Caller())
		c.Next()
	}
}

// GetCaller returns the authenticated caller, or nil on public routes.
func GetCaller(c *gin.Context) *auth.Caller {
	v, ok := c.Get(CallerKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*auth.Caller)
	return caller
}
