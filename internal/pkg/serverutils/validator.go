package serverutils

import (
	"strings"

	"ai-consultancy-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and folds failures into a
// single validation error the middleware can render.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range verrs {
				fields = append(fields, ve.Field()+" failed on '"+ve.Tag()+"'")
			}
			return apperror.New(apperror.KindValidation, "invalid request: "+strings.Join(fields, ", "))
		}
		return apperror.Wrap(apperror.KindValidation, "invalid request", err)
	}
	return nil
}
