package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/platform"
)

var validate = validator.New()

func init() {
	validate.RegisterValidation("label", func(fl validator.FieldLevel) bool {
		return platform.ValidateSubdomain(fl.Field().String()) == nil
	})
	validate.RegisterValidation("dnsmode", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case model.DNSManagedByProvider, model.DNSManagedExternally:
			return true
		}
		return false
	})
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func RequireID(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required ID")
	}
	return s, nil
}

// QueryBool parses an optional boolean query parameter. A missing
// parameter is false.
func QueryBool(r *http.Request, key string) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s parameter %q: must be true or false", key, v)
	}
	return b, nil
}
