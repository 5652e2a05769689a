// Package forms содержит локальную валидацию пользовательского ввода.
//
// Ошибки формы привязаны к полям и никогда не уходят в сеть и в контейнер состояния:
// форма либо валидна и превращается в тело запроса, либо возвращает Errors.
package forms

import (
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator"
)

// Errors — ошибки формы: json-имя поля → сообщение.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e[f])
	}
	return strings.Join(msgs, ", ")
}

var (
	validate   = newValidator()
	looseEmail = regexp.MustCompile(`\S+@\S+\.\S+`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("email_loose", func(fl validator.FieldLevel) bool {
		return looseEmail.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// messages — текст ошибки для пары поле/правило.
var messages = map[string]map[string]string{
	"name": {
		"required": "Name is required",
	},
	"email": {
		"required":    "Email is required",
		"email_loose": "Email is invalid",
	},
	"password": {
		"required": "Password is required",
		"min":      "Password must be at least 6 characters",
	},
	"confirmPassword": {
		"required": "Please confirm your password",
		"eqfield":  "Passwords do not match",
	},
	"accountName": {
		"required": "Account name is required",
	},
	"currentPassword": {
		"required": "Current password is required",
	},
	"newPassword": {
		"required": "New password is required",
		"min":      "Password must be at least 6 characters",
		"nefield":  "New password must be different from current password",
	},
	"title": {
		"required": "Title is required",
	},
	"description": {
		"required": "Description is required",
	},
}

// check валидирует форму и переводит нарушения в Errors.
func check(form any, override map[string]string) error {
	errs := Errors{}

	if err := validate.Struct(form); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range verrs {
			field := fe.Field()
			if _, seen := errs[field]; seen {
				continue
			}
			msg, ok := messages[field][fe.Tag()]
			if !ok {
				msg = field + " is invalid"
			}
			errs[field] = msg
		}
	}
	for field, msg := range override {
		errs[field] = msg
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
