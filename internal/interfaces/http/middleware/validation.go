package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
)

// SetupValidator registers custom validation rules and JSON field naming
// on gin's binding validator. Call once at startup.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Field names in errors follow the json/form tag
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("marketplace", validMarketplace)
}

func validMarketplace(fl validator.FieldLevel) bool {
	_, err := integration.ParseMarketplace(fl.Field().String())
	return err == nil
}
