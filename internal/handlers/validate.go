package handlers

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields under their JSON names and treats a present
// nullableID, even an explicit null, as satisfying `required`.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if id, ok := field.Interface().(nullableID); ok && id.Set {
			return true
		}
		return nil
	}, nullableID{})
	return v
}

// nullableID is an id field whose presence matters separately from its
// value: `"category_id": null` is present, a missing key is not.
type nullableID struct {
	Set   bool
	Value *int64
}

func (n *nullableID) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// check validates v. Missing required fields are reported together, in
// declaration order, before any other rule is considered.
func check(v any) (Result, bool) {
	err := validate.Struct(v)
	if err == nil {
		return Result{}, true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalidBody, false
	}

	var missing []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return Fail(KindClientInput, "Missing required fields: "+strings.Join(missing, ", ")), false
	}
	return Fail(KindValidation, ruleMessage(verrs[0])), false
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "http_url":
		return fe.Field() + " must be an absolute http or https URL"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
