package service

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so error fields match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// checkStruct validates v.  Failing "required" tags produce code with the
// missing fields; otherwise the first failing tag maps through tagCodes.
// With nil tagCodes only "required" is enforced.
func checkStruct(v any, code, msg string, tagCodes map[string]string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make([]string, 0, len(ve))
	var other validator.FieldError
	for _, fe := range ve {
		if fe.Tag() == "required" {
			fields = append(fields, fe.Field())
		} else if other == nil {
			other = fe
		}
	}
	if len(fields) == 0 && other != nil {
		if tagCodes == nil {
			return nil
		}
		if c, ok := tagCodes[other.Tag()]; ok {
			msg := other.Field() + " is invalid"
			if other.Tag() == "max" {
				msg = other.Field() + " must be at most " + other.Param() + " characters"
			}
			return &ValidationError{Code: c, Message: msg, Fields: []string{other.Field()}}
		}
		fields = append(fields, other.Field())
	}
	return &ValidationError{Code: code, Message: msg, Fields: fields}
}

// FlexString decodes from a JSON string or number.  Party size arrives
// either way depending on the form control.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("must be a string or number")
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return errors.New("must be a string or number")
	}
	if f == 0 {
		return nil // a numeric zero party size counts as missing
	}
	*s = FlexString(n.String())
	return nil
}
