package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/idna"
)

// maxBodyBytes caps request bodies; larger ones fail to decode.
const maxBodyBytes = 1 << 20

var validate = validator.New()

var nameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,62}$`)

func init() {
	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return nameRegex.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("domain", func(fl validator.FieldLevel) bool {
		return validDomain(fl.Field().String())
	})
}

// validDomain accepts internationalized names that have a valid A-label form
// with at least two labels.
func validDomain(name string) bool {
	ascii, err := idna.Lookup.ToASCII(strings.TrimSuffix(name, "."))
	if err != nil {
		return false
	}
	labels := strings.Split(ascii, ".")
	if len(labels) < 2 || len(ascii) > 253 {
		return false
	}
	for _, l := range labels {
		if l == "" || len(l) > 63 {
			return false
		}
	}
	return true
}

// Decode reads a JSON body into v and validates it. Validation failures
// read "validation error: address must be an email address; ...".
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return fmt.Errorf("validation error: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be an email address"
	case "domain":
		return fe.Field() + " must be a domain name"
	case "hostname_rfc1123":
		return fe.Field() + " must be a host name"
	case "slug":
		return fe.Field() + " must start with a letter and contain only a-z, 0-9, - and _"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

// RequireID rejects empty path ids and ids that cannot be a resource id.
func RequireID(s string) (string, error) {
	if s == "" {
		return "", errors.New("missing required ID")
	}
	if len(s) > maxCursorLength {
		return "", errors.New("invalid ID")
	}
	return s, nil
}
