package service

import (
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/mmynk/settleup/internal/upi"
)

// validate checks request messages. Besides the built-in tags it knows
// "vpa" (a UPI handle) and "amount" (a positive decimal, currency glyph allowed).
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("vpa", func(fl validator.FieldLevel) bool {
		return upi.IsValidHandle(fl.Field().String())
	})
	v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		return upi.IsUsableAmount(fl.Field().String())
	})
	return v
}

// invalidArgument turns a validation failure into a Connect error naming the
// offending fields.
func invalidArgument(err error) *connect.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return connect.NewError(connect.CodeInvalidArgument,
		fmt.Errorf("invalid fields: %s", strings.Join(fields, ", ")))
}
