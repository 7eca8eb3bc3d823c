package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"apartinvest/server/internal/models"
)

// DefaultWhy and DefaultRisks replace empty why/risks lists.
var (
	DefaultWhy   = []string{"Подробности проекта уточняются у менеджера"}
	DefaultRisks = []string{"Стандартные рыночные риски доходной недвижимости"}
)

// RequiredRecordFields must be present in every raw catalog record.
var RequiredRecordFields = []string{
	"slug", "title", "country", "city", "format", "status", "price", "area", "riskLevel", "seasonality",
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	engineOnce sync.Once
	engine     *validator.Validate

	fieldsOnce sync.Once
	fieldIndex map[string]int
)

func validate() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		for tag, fn := range map[string]validator.Func{"finite": isFinite, "slug": isSlug} {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(fmt.Sprintf("failed to register %s validation: %v", tag, err))
			}
		}
		engine = v
	})
	return engine
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		return !math.IsNaN(f.Float()) && !math.IsInf(f.Float(), 0)
	}
	return true
}

func isSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

// IsSlug reports whether s is a well-formed URL-safe slug.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

func propertyFields() map[string]int {
	fieldsOnce.Do(func() {
		t := reflect.TypeOf(models.Property{})
		fieldIndex = make(map[string]int, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			if name := jsonName(t.Field(i)); name != "" {
				fieldIndex[name] = i
			}
		}
	})
	return fieldIndex
}

// Validate turns a raw untyped record received from outside into a Property, or returns *Error
// listing every violated constraint. An occupancy in (0, 1] is read as a fraction.
func Validate(raw map[string]any) (*models.Property, error) {
	return validateRecord(raw, true)
}

// ValidateStored validates a record this service wrote itself. Its occupancy is already a percentage
// and is never rescaled, so 0.8 stays 0.8%.
func ValidateStored(raw map[string]any) (*models.Property, error) {
	return validateRecord(raw, false)
}

func validateRecord(raw map[string]any, fractionalOccupancy bool) (*models.Property, error) {
	p := &models.Property{}
	violations := decode(raw, p)

	failed := make(map[string]bool, len(violations))
	for _, v := range violations {
		failed[v.Field] = true
	}

	applyDefaults(p, fractionalOccupancy)

	for _, v := range structViolations(p) {
		if !failed[rootField(v.Field)] {
			violations = append(violations, v)
		}
	}

	if p.Enrichment != nil && !failed["enrichment"] {
		if err := ValidateEnrichment(p.Enrichment); err != nil {
			for _, v := range err.(*Error).Violations {
				v.Field = "enrichment." + v.Field
				violations = append(violations, v)
			}
		}
	}

	if len(violations) > 0 {
		slug, _ := raw["slug"].(string)
		return nil, &Error{Slug: slug, Violations: violations}
	}
	return p, nil
}

// ValidateEnrichment checks an enrichment payload on its own.
func ValidateEnrichment(e *models.Enrichment) error {
	violations := structViolations(e)
	if len(violations) > 0 {
		return &Error{Violations: violations}
	}
	return nil
}

// ValidateStruct runs the tag constraints of any struct, e.g. a single POI.
func ValidateStruct(v any) error {
	violations := structViolations(v)
	if len(violations) > 0 {
		return &Error{Violations: violations}
	}
	return nil
}

// FromFieldErrors splits validator errors into missing fields (required tags) and other violations.
// name maps a failed field to its wire name.
func FromFieldErrors(errs validator.ValidationErrors, name func(validator.FieldError) string) (missing []string, violations []Violation) {
	for _, fe := range errs {
		field := name(fe)
		if strings.HasPrefix(fe.Tag(), "required") {
			missing = append(missing, field)
			continue
		}
		violations = append(violations, Violation{Field: field, Rule: fe.Tag(), Message: describe(fe)})
	}
	return missing, violations
}

// RequireFields reports the fields that are absent, null or blank in raw.
func RequireFields(raw map[string]any, fields ...string) error {
	var missing []string
	for _, f := range fields {
		if isBlank(raw[f]) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

// decode sets every known field individually so that each type mismatch is reported.
func decode(raw map[string]any, p *models.Property) []Violation {
	var violations []Violation

	for _, name := range RequiredRecordFields {
		if _, ok := raw[name]; !ok || raw[name] == nil {
			violations = append(violations, Violation{Field: name, Rule: "required", Message: "is required"})
		}
	}

	index := propertyFields()
	dst := reflect.ValueOf(p).Elem()

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		i, ok := index[key]
		if !ok || raw[key] == nil {
			continue
		}
		field := dst.Field(i)
		data, err := json.Marshal(raw[key])
		if err != nil {
			violations = append(violations, Violation{Field: key, Rule: "type", Message: err.Error()})
			continue
		}
		target := reflect.New(field.Type())
		if err := json.Unmarshal(data, target.Interface()); err != nil {
			violations = append(violations, Violation{
				Field:   key,
				Rule:    "type",
				Message: fmt.Sprintf("expected %s", typeName(field.Type())),
			})
			continue
		}
		field.Set(target.Elem())
	}
	return violations
}

func typeName(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "number"
	case reflect.Slice:
		return "array of " + typeName(t.Elem())
	case reflect.Struct:
		return "object"
	}
	return t.Kind().String()
}

func applyDefaults(p *models.Property, fractionalOccupancy bool) {
	if len(p.Why) == 0 {
		p.Why = append([]string(nil), DefaultWhy...)
	}
	if len(p.Risks) == 0 {
		p.Risks = append([]string(nil), DefaultRisks...)
	}
	if fractionalOccupancy {
		p.Occupancy = models.OccupancyPercent(p.Occupancy)
	}
	if p.PaybackYears != nil && *p.PaybackYears <= 0 {
		p.PaybackYears = nil
	}
	if p.ADR != nil && *p.ADR == 0 {
		p.ADR = nil
	}
}

func structViolations(v any) []Violation {
	err := validate().Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Violation{{Field: "", Rule: "invalid", Message: err.Error()}}
	}
	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, Violation{
			Field:   fieldPath(fe.Namespace()),
			Rule:    fe.Tag(),
			Message: describe(fe),
		})
	}
	return violations
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func rootField(path string) string {
	if i := strings.IndexAny(path, ".["); i >= 0 {
		return path[:i]
	}
	return path
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "len":
		return "must have exactly " + fe.Param() + " entries"
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "finite":
		return "must be a finite number"
	case "slug":
		return "must contain only lowercase latin letters, digits and single dashes"
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email"
	}
	return "failed " + fe.Tag() + " check"
}
