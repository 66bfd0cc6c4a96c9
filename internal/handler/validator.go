package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Charltoon/Memory-Archive/internal/common"
	"github.com/Charltoon/Memory-Archive/internal/domain"
)

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("category", func(fl validator.FieldLevel) bool { //nolint:errcheck
		_, ok := domain.ParseCategory(fl.Field().String())
		return ok
	})
	v.RegisterValidation("reaction", func(fl validator.FieldLevel) bool { //nolint:errcheck
		return domain.ReactionType(strings.ToLower(strings.TrimSpace(fl.Field().String()))).IsValid()
	})
	return v
}

// validateRequest runs struct validation and maps the first failing rule to
// the matching business error so the response reads the same as a service
// rejection
func validateRequest(req interface{}) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "category":
		return common.ErrInvalidCategory
	case "reaction":
		return common.ErrInvalidReactionType
	}
	if fe.Field() == "Title" && fe.Tag() == "required" {
		return common.ErrTitleRequired
	}
	return fmt.Errorf("%w: %s failed on %s", common.ErrInvalidInput, fe.Field(), fe.Tag())
}
