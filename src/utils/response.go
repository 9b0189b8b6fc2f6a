package utils

import (
	"bitlibro/src/types"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func JSONOK(ctx *gin.Context, status int, message string, data any) {
	body := gin.H{"message": message, "error": false}
	if data != nil {
		body["data"] = data
	}
	ctx.JSON(status, body)
}

func JSONError(ctx *gin.Context, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s %s] error: %s\n", ctx.Request.Method, ctx.FullPath(), err.Error())
	}
	body := gin.H{"message": ErrorMessage(err), "error": true}
	var appErr *types.AppError
	if errors.As(err, &appErr) && len(appErr.Details) > 0 {
		body["data"] = appErr.Details
	}
	ctx.AbortWithStatusJSON(status, body)
}

// BindingError converts a gin binding failure into a validation error with one message per field.
func BindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fieldMessage(fe))
		}
		return types.NewValidationErrors(details)
	}
	return types.NewValidationErrors([]string{err.Error()})
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gtdate":
		return fmt.Sprintf("%s must be after %s", field, fe.Param())
	case "gtedate":
		return fmt.Sprintf("%s must not be before %s", field, fe.Param())
	case "notpastdate":
		return fmt.Sprintf("%s cannot be in the past", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}
