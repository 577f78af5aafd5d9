package validation

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)
	}
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error details.
// Messages never echo the rejected value.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		return map[string]string{"payload": "empty body"}
	}

	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		field := ute.Field
		if field == "" {
			field = "payload"
		}
		return map[string]string{field: "must be a " + ute.Type.String()}
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	if errors.As(err, &se) || errors.Is(err, io.ErrUnexpectedEOF) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	case "required":
		return "is required"
	case "numeric":
		return "must be numeric"
	case "oneof":
		return "must be one of [" + param + "]"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "ltefield":
		return "must be less than or equal to " + param
	case "gtefield":
		return "must be greater than or equal to " + param

	case "min", "max", "len", "gt", "gte", "lt", "lte":
		return sizeMessage(tag, param, kind)
	}
	return "is invalid (" + tag + ")"
}

var sizeWords = map[string]string{
	"min": "at least",
	"gte": "at least",
	"max": "at most",
	"lte": "at most",
	"gt":  "more than",
	"lt":  "less than",
	"len": "exactly",
}

// sizeMessage words a bound by kind: characters for strings, items for
// collections, a plain number otherwise.
func sizeMessage(tag, param string, kind reflect.Kind) string {
	word := sizeWords[tag]
	switch kind {
	case reflect.String:
		return "must be " + word + " " + param + " characters long"
	case reflect.Slice, reflect.Array, reflect.Map:
		return "must contain " + word + " " + param + " items"
	default:
		return "must be " + word + " " + param
	}
}
