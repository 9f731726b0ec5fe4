package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names rather than Go field names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateSessionContentJSON decodes raw strictly and checks it against the
// session schema.
func ValidateSessionContentJSON(raw []byte) (SessionContent, error) {
	var content SessionContent
	if err := decodeAndValidate(raw, &content); err != nil {
		return SessionContent{}, fmt.Errorf("invalid session content: %w", err)
	}
	return content, nil
}

// ValidateCodeExampleJSON decodes raw strictly and checks it against the
// code example schema.
func ValidateCodeExampleJSON(raw []byte) (CodeExampleContent, error) {
	var content CodeExampleContent
	if err := decodeAndValidate(raw, &content); err != nil {
		return CodeExampleContent{}, fmt.Errorf("invalid code example: %w", err)
	}
	return content, nil
}

func decodeAndValidate(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := validate.Struct(dst); err != nil {
		return describeValidation(err)
	}
	return nil
}

// describeValidation flattens validator errors into one line listing each
// failing field path and rule.
func describeValidation(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, path+" ("+rule+")")
	}
	return errors.New("schema violations: " + strings.Join(parts, ", "))
}
