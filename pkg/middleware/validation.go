package middleware

import (
	stderrors "errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/wms-platform/picker-performance-service/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	pickerIDRegex     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)
	snapshotNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _.-]{0,79}$`)
)

// InitValidator registers the service's custom tags on gin's validator and a standalone one.
func InitValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		register(validate)

		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			register(v)
		}
	})
	return validate
}

func register(v *validator.Validate) {
	_ = v.RegisterValidation("picker_id", func(fl validator.FieldLevel) bool {
		return pickerIDRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("snapshot_name", func(fl validator.FieldLevel) bool {
		return snapshotNameRegex.MatchString(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidatePickerID reports whether id is an acceptable picker identifier.
func ValidatePickerID(id string) bool {
	return pickerIDRegex.MatchString(id)
}

// ValidationErrorFormatter flattens validator errors into field -> message
func ValidationErrorFormatter(err error) map[string]string {
	fields := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if stderrors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			fields[e.Field()] = formatValidationError(e)
		}
	}
	return fields
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + e.Param()
	case "max", "lte":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "picker_id":
		return "must be 1-64 letters, digits, dashes or underscores"
	case "snapshot_name":
		return "must be 1-80 characters of letters, digits, spaces, dots, dashes or underscores"
	default:
		return "is invalid"
	}
}

// BindAndValidate binds a JSON request body and validates it
func BindAndValidate(c *gin.Context, obj interface{}) *errors.AppError {
	if err := c.ShouldBindJSON(obj); err != nil {
		var validationErrors validator.ValidationErrors
		if stderrors.As(err, &validationErrors) {
			return errors.ErrValidationWithFields("validation failed", ValidationErrorFormatter(validationErrors))
		}
		return errors.ErrBadRequest("invalid request body: " + err.Error())
	}
	return nil
}

// ContentType rejects non-JSON bodies on writes
func ContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			contentType := c.GetHeader("Content-Type")
			if c.Request.ContentLength > 0 && !strings.HasPrefix(contentType, "application/json") {
				AbortWithAppError(c, &errors.AppError{
					Code:       "INVALID_CONTENT_TYPE",
					Message:    "Content-Type must be application/json",
					HTTPStatus: http.StatusUnsupportedMediaType,
				})
				return
			}
		}
		c.Next()
	}
}
