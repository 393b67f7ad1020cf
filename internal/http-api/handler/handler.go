package handler

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/errs"
	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/service"
	"libraryhub/internal/media"
)

const defaultTimeout = 5 * time.Second

// Options are shared by every handler.
type Options struct {
	Log     *zap.Logger
	Timeout time.Duration
	Media   *media.Resolver
}

type base struct {
	log     *zap.Logger
	timeout time.Duration
	media   *media.Resolver
}

func newBase(opts Options, name string) base {
	b := base{log: opts.Log, timeout: opts.Timeout, media: opts.Media}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	b.log = b.log.Named(name)
	if b.timeout <= 0 {
		b.timeout = defaultTimeout
	}
	if b.media == nil {
		b.media = media.NewResolver("./media", "/media/")
	}
	return b
}

func (b base) context(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), b.timeout)
}

// fail maps err onto a status code; unexpected errors are logged and hidden.
func (b base) fail(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusUnprocessableEntity, validationResponse(verrs))
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, errs.ValidationErrorResponse{Error: err.Error()})
	case errors.Is(err, errs.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		b.log.Warn("request timed out", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		b.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON decodes the body into req, answering 400 or 422 itself on failure.
func (b base) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		b.bindFailed(c, err)
		return false
	}
	return true
}

// bindQuery binds the query string into req, answering 400 or 422 itself on failure.
func (b base) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		b.bindFailed(c, err)
		return false
	}
	return true
}

func (b base) bindFailed(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, validationResponse(verrs))
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
}

func (b base) paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func (b base) actor(c *gin.Context) (service.Actor, bool) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return service.Actor{}, false
	}
	return actor, true
}

func validationResponse(verrs validator.ValidationErrors) errs.ValidationErrorResponse {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fe.Field()] = rule
	}
	return errs.ValidationErrorResponse{Error: "validation failed", Fields: fields}
}

var registerOnce sync.Once

// RegisterValidatorNames makes validation errors report json/form field names.
func RegisterValidatorNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}

func newPageQuery() dto.PageQuery {
	return dto.PageQuery{Page: 1, PageSize: 20}
}
