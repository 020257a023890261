// FundCompass - Mutual Fund Screening and Recommendation Engine
// Copyright 2026 R. Sondhi (rsondhi)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rsondhi/fundcompass

// Package validation provides the shared request validator.
//
// One validator instance is reused across all handlers (it caches struct
// metadata), with human-readable English messages. Validation failures at
// the API boundary convert to the engine's typed input error so clients
// see one consistent error shape.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/rsondhi/fundcompass/internal/models"
)

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

// instance returns the shared validator, building it on first use.
func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// JSON tag names in messages, not Go field names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		english := en.New()
		uni := ut.New(english, english)
		translator, _ = uni.GetTranslator("en")
		_ = entranslations.RegisterDefaultTranslations(validate, translator)
	})
	return validate
}

// Struct validates s against its `validate` tags. The first violation is
// returned as a *models.InputDomainError with the JSON field name.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return &models.InputDomainError{
			Field:  first.Field(),
			Value:  first.Value(),
			Reason: first.Translate(translator),
		}
	}
	return err
}
