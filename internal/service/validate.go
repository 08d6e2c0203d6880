package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в ошибках нужны имена полей из JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate возвращает *ValidationError по первому неверному полю
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &ValidationError{Field: fe.Field(), Code: ruleCode(fe.Tag(), fe.Kind())}
}

func ruleCode(tag string, kind reflect.Kind) string {
	switch tag {
	case "required":
		return "required"
	case "gt":
		return "positive"
	case "email":
		return "email"
	case "url":
		return "url"
	case "max":
		// max у чисел - ограничение значения, а не длины
		if kind == reflect.String {
			return "max"
		}
	}
	return "invalid"
}

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
