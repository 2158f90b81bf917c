package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yungbote/nishad-backend/internal/http/response"
)

type validEnum interface {
	Valid() bool
}

var registerOnce sync.Once

// RegisterValidators adds the `enum` tag to gin's validator. Fields tagged
// `binding:"omitempty,enum"` must implement Valid() bool.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
		_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			e, ok := fl.Field().Interface().(validEnum)
			return ok && e.Valid()
		})
	})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", bindingMessage(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", bindingMessage(err))
		return false
	}
	return true
}

func bindingMessage(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a bare email address", fe.Field()))
		case "enum":
			parts = append(parts, fmt.Sprintf("unknown %s %q", fe.Field(), fmt.Sprint(fe.Value())))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(parts, "; "))
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}
