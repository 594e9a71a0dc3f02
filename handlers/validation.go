package handlers

import (
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"storefront-api/services"
)

// newValidator returns a validator that reports fields by their JSON name and
// knows the "phone" tag.
func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validatorv10.FieldLevel) bool {
		return services.ValidPhone(fl.Field().String())
	})
	return v
}

// bind decodes the JSON body into out and validates it. On failure the 400
// response has already been written.
func (h *Handler) bind(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", map[string]string{"body": err.Error()})
		return false
	}
	if err := h.validate.Struct(out); err != nil {
		fields := validationErrorsToMap(err)
		fail(c, http.StatusBadRequest, "Validation failed: "+fieldList(fields), fields)
		return false
	}
	return true
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		out["body"] = err.Error()
		return out
	}
	for _, fe := range ve {
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		out[ns] = describe(fe)
	}
	return out
}

func describe(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "phone":
		return "must be exactly 10 digits"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte", "lte":
		return fmt.Sprintf("must satisfy %s %s", fe.Tag(), fe.Param())
	default:
		return "is invalid"
	}
}

func fieldList(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
