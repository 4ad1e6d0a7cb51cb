package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"datapack/internal/standard"
	"datapack/internal/table"
)

const sectionContributors = "contributors"

var patternCache sync.Map // pattern -> *regexp.Regexp or error

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(pattern); ok {
		if re, ok := cached.(*regexp.Regexp); ok {
			return re, nil
		}
		return nil, cached.(error)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		patternCache.Store(pattern, err)
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}

// ValidateMetadata checks the top-level keys of a package document against
// the metadata rules. Missing required keys and bad required values are
// errors; missing or bad recommended keys are warnings. At least one
// contributor must have the author role.
func ValidateMetadata(doc map[string]any, spec *standard.Spec) *Result {
	r := NewResult()
	checkRequired(r, doc, spec.Metadata.Required)
	checkRecommended(r, doc, spec.Metadata.Recommended)

	if contributors, ok := doc[sectionContributors]; ok && !hasAuthor(contributors) {
		r.AddError(sectionContributors, "At least one contributor with role 'author' is required")
	}
	return r
}

// ValidateResource checks one resource object against the resource rules,
// nudges towards the preferred format and validates every field of its
// table schema.
func ValidateResource(res map[string]any, spec *standard.Spec) *Result {
	r := NewResult()
	checkRequired(r, res, spec.Resources.Required)

	if format, ok := res["format"]; ok && spec.Resources.PreferredFormat != "" {
		if fmt.Sprint(format) != spec.Resources.PreferredFormat {
			r.AddWarning("format", fmt.Sprintf("Format '%v' is acceptable, but '%s' is preferred", format, spec.Resources.PreferredFormat))
		}
	}

	checkRecommended(r, res, spec.Resources.Recommended)

	schema, _ := res["schema"].(map[string]any)
	fields, _ := schema["fields"].([]any)
	for i, item := range fields {
		field, ok := item.(map[string]any)
		if !ok {
			r.AddError(fmt.Sprintf("field %d", i), fmt.Sprintf("Field definition must be an object, got %s", describe(item)))
			continue
		}
		r.Merge(ValidateFieldDefinition(field, spec))
	}
	return r
}

// ValidateFieldDefinition checks one field (column) definition. A numeric
// field without a unit is always an error.
func ValidateFieldDefinition(field map[string]any, spec *standard.Spec) *Result {
	r := NewResult()
	name, _ := field["name"].(string)
	if name == "" {
		name = "unknown"
	}

	for _, rule := range spec.Fields.Required {
		value, ok := field[rule.Field]
		if !ok {
			r.AddError(name, ruleMessage(rule, fmt.Sprintf("Required field '%s' is missing", rule.Field)))
			continue
		}
		for _, msg := range checkValue(value, rule) {
			r.AddError(name, msg)
		}
		if len(rule.AllowedTypes) > 0 && !containsValue(rule.AllowedTypes, value) {
			r.AddError(name, fmt.Sprintf("Invalid type '%v'. Must be one of: %s", value, strings.Join(rule.AllowedTypes, ", ")))
		}
	}

	if typ, _ := field["type"].(string); typ == "number" || typ == "integer" {
		if unit, ok := field["unit"]; !ok || unit == nil {
			r.AddError(name, orDefault(spec.Fields.NumericUnitMessage, "Numeric fields must have a unit specified"))
		}
	}

	describedByRule := false
	for _, rule := range spec.Fields.Recommended {
		if rule.Field == "description" {
			describedByRule = true
		}
		checkRecommendedKey(r, field, rule, name)
	}
	if !describedByRule {
		if _, ok := field["description"]; !ok {
			r.AddWarning(name, "Field description improves dataset usability")
		}
	}
	return r
}

func checkRequired(r *Result, obj map[string]any, rules []standard.FieldRule) {
	for _, rule := range rules {
		value, ok := obj[rule.Field]
		if !ok {
			r.AddError(rule.Field, ruleMessage(rule, fmt.Sprintf("Required field '%s' is missing", rule.Field)))
			continue
		}
		for _, msg := range checkValue(value, rule) {
			r.AddError(rule.Field, msg)
		}
	}
}

func checkRecommended(r *Result, obj map[string]any, rules []standard.FieldRule) {
	for _, rule := range rules {
		checkRecommendedKey(r, obj, rule, rule.Field)
	}
}

func checkRecommendedKey(r *Result, obj map[string]any, rule standard.FieldRule, field string) {
	value, ok := obj[rule.Field]
	if !ok {
		r.AddWarning(field, ruleMessage(rule, fmt.Sprintf("Recommended field '%s' is missing", rule.Field)))
		return
	}
	for _, msg := range checkValue(value, rule) {
		r.AddWarning(field, msg)
	}
}

// checkValue returns the violations of value against the type, length,
// pattern and item-count constraints of rule.
func checkValue(value any, rule standard.FieldRule) []string {
	var msgs []string
	switch rule.Type {
	case standard.TypeString:
		s, ok := value.(string)
		if !ok {
			return []string{fmt.Sprintf("Expected string, got %s", describe(value))}
		}
		n := utf8.RuneCountInString(s)
		if rule.MinLength != nil && n < *rule.MinLength {
			msgs = append(msgs, fmt.Sprintf("Minimum length is %d, got %d", *rule.MinLength, n))
		}
		if rule.MaxLength != nil && n > *rule.MaxLength {
			msgs = append(msgs, fmt.Sprintf("Maximum length is %d, got %d", *rule.MaxLength, n))
		}
		if rule.Pattern != "" {
			re, err := compilePattern(rule.Pattern)
			switch {
			case err != nil:
				msgs = append(msgs, fmt.Sprintf("Rule pattern %q does not compile: %v", rule.Pattern, err))
			case !re.MatchString(s):
				msgs = append(msgs, ruleMessage(rule, "Value does not match pattern"))
			}
		}

	case standard.TypeArray:
		list, ok := value.([]any)
		if !ok {
			return []string{fmt.Sprintf("Expected array, got %s", describe(value))}
		}
		if rule.MinItems != nil && len(list) < *rule.MinItems {
			msgs = append(msgs, ruleMessage(rule, fmt.Sprintf("Minimum %d items required", *rule.MinItems)))
		}
		if rule.MaxItems != nil && len(list) > *rule.MaxItems {
			msgs = append(msgs, fmt.Sprintf("Maximum %d items allowed", *rule.MaxItems))
		}

	case standard.TypeURL:
		s, ok := value.(string)
		if !ok {
			return []string{fmt.Sprintf("Expected URL string, got %s", describe(value))}
		}
		if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
			msgs = append(msgs, "URL must start with http:// or https://")
		}

	case standard.TypeObject:
		if _, ok := value.(map[string]any); !ok {
			msgs = append(msgs, fmt.Sprintf("Expected object, got %s", describe(value)))
		}

	case standard.TypeDate:
		s, ok := value.(string)
		if !ok {
			return []string{fmt.Sprintf("Expected date string, got %s", describe(value))}
		}
		if !isDate(s) {
			msgs = append(msgs, fmt.Sprintf("Expected a date in YYYY-MM-DD or RFC 3339 format, got %q", s))
		}
	}
	return msgs
}

func isDate(s string) bool {
	if _, err := time.Parse(time.DateOnly, s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

func hasAuthor(contributors any) bool {
	list, _ := contributors.([]any)
	for _, item := range list {
		if c, ok := item.(map[string]any); ok && c["role"] == "author" {
			return true
		}
	}
	return false
}

func containsValue(allowed []string, value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, a := range allowed {
		if a == s {
			return true
		}
	}
	return false
}

func ruleMessage(rule standard.FieldRule, fallback string) string {
	return orDefault(rule.Message, fallback)
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return table.TypeName(v)
}
