package doctype

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dynadoc-api/internal/apperrors"
)

// The validation engine is a pure function over a type's field definitions and
// a candidate payload. It never short-circuits: every violation is collected
// so the caller can report all problems at once. An empty result means valid.

type validationRules struct {
	Min       *float64 `json:"min"`
	Max       *float64 `json:"max"`
	MinLength *int     `json:"minLength"`
	MaxLength *int     `json:"maxLength"`
	Pattern   string   `json:"pattern"`
}

type displayCondition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// ValidateHeader checks data against the non-line field definitions.
func ValidateHeader(fields []FieldDefinition, data map[string]any) []apperrors.FieldError {
	errs := []apperrors.FieldError{}
	for _, f := range fields {
		if f.IsLineItem {
			continue
		}
		for _, msg := range validateField(f, data) {
			errs = append(errs, apperrors.FieldError{Field: f.FieldKey, Message: msg})
		}
	}
	return errs
}

// ValidateLines applies the line-item subset of the field definitions to every
// line independently. Errors carry the 0-based line index.
func ValidateLines(fields []FieldDefinition, lines []map[string]any) []apperrors.FieldError {
	lineFields := make([]FieldDefinition, 0, len(fields))
	for _, f := range fields {
		if f.IsLineItem {
			lineFields = append(lineFields, f)
		}
	}
	if len(lineFields) == 0 {
		return []apperrors.FieldError{}
	}

	errs := []apperrors.FieldError{}
	for i, line := range lines {
		idx := i
		for _, f := range lineFields {
			for _, msg := range validateField(f, line) {
				errs = append(errs, apperrors.FieldError{Field: f.FieldKey, LineIndex: &idx, Message: msg})
			}
		}
	}
	return errs
}

func validateField(f FieldDefinition, data map[string]any) []string {
	var msgs []string
	name := f.Label
	if name == "" {
		name = f.FieldKey
	}

	value, present := data[f.FieldKey]
	empty := !present || isEmpty(value)

	if empty {
		// A field hidden by its display condition is exempt from the
		// required check regardless of its static flag.
		if f.IsRequired && conditionVisible(f.ConditionalDisplay, data) {
			msgs = append(msgs, fmt.Sprintf("%s is required", name))
		}
		return msgs
	}

	switch f.FieldType {
	case FieldTypeSelect, FieldTypeRadio:
		opts := optionValues(f.Options)
		if len(opts) > 0 && !containsString(opts, toString(value)) {
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", name, strings.Join(opts, ", ")))
		}
	case FieldTypeMultiselect:
		opts := optionValues(f.Options)
		if len(opts) > 0 {
			for _, v := range toSlice(value) {
				if !containsString(opts, toString(v)) {
					msgs = append(msgs, fmt.Sprintf("%s contains invalid option: %s", name, toString(v)))
				}
			}
		}
	case FieldTypeNumber:
		if _, ok := toFloat(value); !ok {
			msgs = append(msgs, fmt.Sprintf("%s must be a number", name))
		}
	}

	msgs = append(msgs, applyRules(f, name, value)...)
	return msgs
}

func applyRules(f FieldDefinition, name string, value any) []string {
	if len(f.ValidationRules) == 0 {
		return nil
	}

	var rules validationRules
	if err := json.Unmarshal(f.ValidationRules, &rules); err != nil {
		return nil
	}

	var msgs []string

	if rules.Min != nil || rules.Max != nil {
		if n, ok := toFloat(value); ok {
			if rules.Min != nil && n < *rules.Min {
				msgs = append(msgs, fmt.Sprintf("%s must be at least %v", name, *rules.Min))
			}
			if rules.Max != nil && n > *rules.Max {
				msgs = append(msgs, fmt.Sprintf("%s must be at most %v", name, *rules.Max))
			}
		}
	}

	s, isString := value.(string)
	if isString {
		if rules.MinLength != nil && len([]rune(s)) < *rules.MinLength {
			msgs = append(msgs, fmt.Sprintf("%s must be at least %d characters", name, *rules.MinLength))
		}
		if rules.MaxLength != nil && len([]rune(s)) > *rules.MaxLength {
			msgs = append(msgs, fmt.Sprintf("%s must be at most %d characters", name, *rules.MaxLength))
		}
		if rules.Pattern != "" {
			if re, err := regexp.Compile(rules.Pattern); err == nil && !re.MatchString(s) {
				msgs = append(msgs, fmt.Sprintf("%s has an invalid format", name))
			}
		}
	}

	return msgs
}

// conditionVisible evaluates a field's display condition against the payload.
// Malformed or absent conditions leave the field visible.
func conditionVisible(raw []byte, data map[string]any) bool {
	if len(raw) == 0 {
		return true
	}

	var cond displayCondition
	if err := json.Unmarshal(raw, &cond); err != nil || cond.Field == "" {
		return true
	}

	actual := data[cond.Field]

	switch cond.Operator {
	case "eq", "":
		return toString(actual) == toString(cond.Value)
	case "neq":
		return toString(actual) != toString(cond.Value)
	case "in":
		for _, v := range toSlice(cond.Value) {
			if toString(actual) == toString(v) {
				return true
			}
		}
		return false
	case "notEmpty":
		return !isEmpty(actual)
	default:
		return true
	}
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	default:
		return false
	}
}

func toString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// optionValues flattens an options column that holds either plain strings or
// {value,label} objects.
func optionValues(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}

	var plain []string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var objs []struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &objs); err == nil {
		out := make([]string, 0, len(objs))
		for _, o := range objs {
			if o.Value != "" {
				out = append(out, o.Value)
			}
		}
		return out
	}

	return nil
}
