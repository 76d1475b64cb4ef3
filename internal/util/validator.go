package util

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags on gin's validator:
// isodate (YYYY-MM-DD) and hhmm (HH:MM). JSON names are used in messages.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			return ValidDate(fl.Field().String())
		})
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return ValidHour(fl.Field().String())
		})
	})
}

func ValidDate(s string) bool {
	_, err := time.Parse(DateFormat, s)
	return err == nil
}

func ValidHour(s string) bool {
	_, err := time.Parse(HourFormat, s)
	return err == nil && len(s) == 5
}

// Today returns the current local date as YYYY-MM-DD.
func Today() string {
	return time.Now().Format(DateFormat)
}
