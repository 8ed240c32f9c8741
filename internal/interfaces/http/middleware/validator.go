package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// SetupValidator registers custom validation tags with gin's binding engine.
// Call once at startup before routes are served.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// category_color accepts the six-digit #rrggbb form the dashboard
	// palette uses.
	_ = v.RegisterValidation("category_color", func(fl validator.FieldLevel) bool {
		return colorPattern.MatchString(fl.Field().String())
	})
}
