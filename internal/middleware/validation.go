package middleware

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mertz/schooladmin/internal/app/models/dto"
)

var validate = validator.New()

// ValidateRequest binds the JSON body into a fresh instance of the template's
// type and runs the struct validators on it. The validated object lands in
// the context under "validatedBody". A new instance per request keeps
// concurrent bindings from racing on shared state.
func ValidateRequest(template interface{}) gin.HandlerFunc {
	templateType := reflect.TypeOf(template)
	if templateType.Kind() == reflect.Ptr {
		templateType = templateType.Elem()
	}

	return func(c *gin.Context) {
		obj := reflect.New(templateType).Interface()

		if err := c.ShouldBindJSON(obj); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
			errorDetail = errorDetail.WithDetails(err.Error())
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			c.Abort()
			return
		}

		value := reflect.ValueOf(obj)
		if value.Kind() == reflect.Ptr {
			value = value.Elem()
		}

		if err := validate.Struct(value.Interface()); err != nil {
			errorDetail := dto.HandleValidationError(err)
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			c.Abort()
			return
		}

		c.Set("validatedBody", obj)
		c.Next()
	}
}
