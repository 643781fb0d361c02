package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"siso/internal/apierror"
	"siso/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// report json names in the field map
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes a 400 if either fails; the caller should return
// immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()[strings.Index(fe.Namespace(), ".")+1:]] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps service errors to HTTP statuses. Anything unknown is
// handed to middleware.ErrorHandler as an opaque 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalid):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}

// paramID parses a positive numeric path parameter, writing a 400 on failure.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.New(name+" inválido"))
		return 0, false
	}
	return uint(id), true
}

// queryPeriodo reads the RFC3339 "inicio" and "fim" query parameters and
// returns them in UTC, the zone every stored timestamp is written in.
func queryPeriodo(c *gin.Context) (time.Time, time.Time, bool) {
	inicio, err := time.Parse(time.RFC3339, c.Query("inicio"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("inicio deve estar no formato RFC3339"))
		return time.Time{}, time.Time{}, false
	}
	fim, err := time.Parse(time.RFC3339, c.Query("fim"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("fim deve estar no formato RFC3339"))
		return time.Time{}, time.Time{}, false
	}
	return inicio.UTC(), fim.UTC(), true
}

// queryIDs parses a comma separated list such as "1,2,3".
func queryIDs(c *gin.Context, name string) ([]uint, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		c.JSON(http.StatusBadRequest, apierror.New(name+" é obrigatório"))
		return nil, false
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, apierror.New(name+" contém um id inválido: "+p))
			return nil, false
		}
		ids = append(ids, uint(id))
	}
	return ids, true
}

// location builds the Location header for a resource created under the
// current request path.
func location(c *gin.Context, id uint) string {
	return strings.TrimSuffix(c.Request.URL.Path, "/") + "/" + strconv.FormatUint(uint64(id), 10)
}
