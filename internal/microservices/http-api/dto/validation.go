package dto

import (
	"time"

	"yamdb/internal/microservices/http-api/models"

	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding tags used by the request DTOs.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s != models.ReservedUsername && models.ValidUsername(s)
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return models.ValidSlug(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(time.Now().Year())
	})
}
