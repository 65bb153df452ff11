package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/padhaihq/padhai/core"
)

var (
	userRoleTag  = "userrole"
	userRoleText = "invalid role. Must be student, mentor, or admin"
)

// RegisterCustomValidators registers user-specific validation tags.
func RegisterCustomValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(userRoleTag, userRoleValidation)
	core.RegisterCustomTranslation(validate, translator, userRoleTag, userRoleText)
}

func userRoleValidation(fl validator.FieldLevel) bool {
	return ValidRole(fl.Field().String())
}
