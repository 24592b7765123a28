// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

// Package validate runs form buffers through struct validation before any
// network call, so that a bad form is rejected locally with a user-visible
// message naming the offending field.
package validate

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

var (
	// Validate is the shared validator instance.
	Validate *validator.Validate
	// Translator renders validation errors in the backend's language.
	Translator ut.Translator
)

func init() {
	Validate = validator.New()

	_zh := zh.New()
	uni := ut.New(_zh, _zh)
	Translator, _ = uni.GetTranslator("zh")
	_ = zh_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Struct validates a form buffer. The returned error's message is already
// translated and safe to surface to the user.
func Struct(form interface{}) error {
	err := Validate.Struct(form)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return &FormError{Message: errs[0].Translate(Translator)}
	}
	return err
}

// FormError is a local validation failure. It blocks the network call
// entirely; the backend never sees the form.
type FormError struct {
	Message string
}

func (e *FormError) Error() string { return e.Message }
