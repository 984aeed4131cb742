package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/baechuer/signup-service/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names ("name", "email") instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RegisterRequest is the POST /api/users body.
// Values are taken as sent: no trimming, no case folding.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

func (r *RegisterRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ErrInternal(err)
	}

	var missing []string
	var invalid *domain.Error
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			missing = append(missing, fe.Field())
		case "max":
			if invalid == nil {
				invalid = domain.ErrInvalidField(fe.Field(), fmt.Sprintf("must be at most %s characters", fe.Param()))
			}
		default:
			if invalid == nil {
				invalid = domain.ErrInvalidField(fe.Field(), "is invalid")
			}
		}
	}

	if len(missing) > 0 {
		return domain.ErrMissingFields(missing...)
	}
	return invalid
}
