package render

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nkiryanov/bankledger/internal/models"
)

func configureValidator(validate *validator.Validate) {
	_ = validate.RegisterValidation("currency", validateCurrency)
	_ = validate.RegisterValidation("digits", validateDigits)
	validate.RegisterTagNameFunc(useJSONTagNames)
}

// Return on 'TagName' json tag instead of struct name
// Look at documentation of 'RegisterTagNameFunc' for more details
func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// ISO code of currency accounts may be held in
func validateCurrency(fl validator.FieldLevel) bool {
	return models.IsSupportedCurrency(fl.Field().String())
}

// Non empty string of ascii digits only, like account or routing number
func validateDigits(fl validator.FieldLevel) bool {
	number := fl.Field().String()
	if number == "" {
		return false
	}

	for i := range len(number) {
		if number[i] < '0' || number[i] > '9' {
			return false
		}
	}
	return true
}
