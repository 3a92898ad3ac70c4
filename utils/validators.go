package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/vi"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	vi_translations "github.com/go-playground/validator/v10/translations/vi"
)

var (
	cccdTag   = "cccd"
	cccdText  = "{0} phải gồm đúng 12 chữ số"
	cccdRegex = regexp.MustCompile(`^\d{12}$`)
)

// Validator bọc validator/v10 kèm bản dịch tiếng Việt, trả lỗi dạng *AppError.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewValidator() *Validator {
	locale := vi.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("vi")

	validate := validator.New()
	_ = vi_translations.RegisterDefaultTranslations(validate, trans)

	// Dùng tên trường json trong thông báo lỗi
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(cccdTag, func(fl validator.FieldLevel) bool {
		return cccdRegex.MatchString(fl.Field().String())
	})
	_ = validate.RegisterTranslation(
		cccdTag, trans,
		func(t ut.Translator) error { return t.Add(cccdTag, cccdText, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(cccdTag, fe.Field())
			return s
		},
	)

	return &Validator{validate: validate, trans: trans}
}

// Struct kiểm tra s theo tag `validate`, lỗi trả về là ValidationError có Fields.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(v.trans)
	}
	return NewValidationError("Dữ liệu không hợp lệ", fields)
}

// IsCCCD kiểm tra chuỗi có đúng 12 chữ số.
func IsCCCD(s string) bool {
	return cccdRegex.MatchString(s)
}
