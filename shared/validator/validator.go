package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"roadbook/config"
	"roadbook/shared/constant"
	"roadbook/shared/failure"
	"roadbook/shared/timezone"
	"time"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

// registerHourValidation accepts RFC3339 timestamps that sit on an hour boundary of the application timezone.
func registerHourValidation(field val.FieldLevel) bool {
	str, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	parsed, err := time.Parse(constant.DateFormat, str)
	if err != nil {
		return false
	}

	return timezone.IsStartOfHour(timezone.ToAppTime(parsed))
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	err := validate.RegisterValidation("roadbook", func(fl val.FieldLevel) bool {
		method := fl.Field().MethodByName("Validate")
		if method.IsValid() {
			result := method.Call([]reflect.Value{reflect.ValueOf(config.Get())})

			return result[0].Interface() == nil
		}

		return false
	})

	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("empty", func(fl val.FieldLevel) bool {
		empty := fl.Field().IsZero()

		return empty
	})

	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("hour", registerHourValidation)
	if err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}
