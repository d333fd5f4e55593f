package form

import (
	"errors"
	"sort"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	gerr "github.com/jakubkanna/labguy-manager/internal/errors"
)

// ValidateStruct runs ozzo field rules and folds every violation into a single
// bad request error.
func ValidateStruct(structPtr interface{}, rules ...*validation.FieldRules) error {
	err := validation.ValidateStruct(structPtr, rules...)
	if err == nil {
		return nil
	}

	var ve validation.Errors
	if !errors.As(err, &ve) {
		// internal errors, e.g. a rule applied to a field not in the struct
		return err
	}

	keys := make([]string, 0, len(ve))
	for k := range ve {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, formatErrMsg(k+": "+ve[k].Error()))
	}
	return gerr.BadRequest(strings.Join(msgs, " "))
}

func formatErrMsg(s string) string {
	return ucfirst(strings.Trim(s, " .")) + "."
}

func ucfirst(str string) string {
	for i, v := range str {
		return string(unicode.ToUpper(v)) + str[i+len(string(v)):]
	}
	return ""
}
