package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

const tagMinItems = "min_items"

// FieldError is one field-level validation failure. Field is a JSON path
// relative to the validated entity, such as "ingredients[1].calories".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

// Outcome is the result of validating one payload. On success Entity holds
// the typed value; otherwise Errors, Message and Err describe the failure.
type Outcome struct {
	Success bool
	Entity  nutrition.Entity
	Errors  []FieldError
	// Message is a diagnostic summary including field paths. It is meant for
	// logs and tooling, not end users.
	Message string
	// Err is the classified failure. Its message is safe to show users.
	Err *domain.Error
}

// Validator performs strict validation of decoded payloads. It is safe for
// concurrent use.
type Validator struct {
	registry *Registry
	validate *validator.Validate
}

// NewValidator creates a Validator bound to the registry's vocabularies.
func NewValidator(r *Registry) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	// Tag names are constants; registration only fails on an empty name.
	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "vocab", func(fl validator.FieldLevel) bool {
		return r.Allows(fl.Param(), fl.Field().String())
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		meal, _ := sl.Current().Interface().(nutrition.Meal)
		if n := r.MinMealIngredients(); len(meal.Ingredients) < n {
			sl.ReportError(meal.Ingredients, "ingredients", "Ingredients", tagMinItems, strconv.Itoa(n))
		}
	}, nutrition.Meal{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		plan, _ := sl.Current().Interface().(nutrition.Plan)
		if n := r.MinPlanMeals(); len(plan.Meals) < n {
			sl.ReportError(plan.Meals, "meals", "Meals", tagMinItems, strconv.Itoa(n))
		}
	}, nutrition.Plan{})

	return &Validator{registry: r, validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("schema: registering %q validation: %v", tag, err))
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

// Registry returns the registry the validator checks against.
func (v *Validator) Registry() *Registry {
	return v.registry
}

// Validate decodes jsonText and checks it against the shape for kind:
// required fields present, primitive types correct, enumerated fields drawn
// from the registry and nested lists long enough. Absent optional fields take
// their registry defaults; JSON null counts as absent. It never panics on
// malformed input: a parse failure is reported as a ParsingError outcome.
func (v *Validator) Validate(jsonText string, kind nutrition.EntityKind) Outcome {
	if !kind.IsValid() {
		return failure(domain.NewError(domain.KindUnsupportedOperation,
			fmt.Sprintf("unsupported entity kind %q", kind)), nil)
	}

	var raw any
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return parseFailure(kind, err)
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return failure(domain.NewError(domain.KindFormat,
			fmt.Sprintf("the %s must be a JSON object", kind)), nil)
	}

	p := &projector{registry: v.registry}
	var entity nutrition.Entity
	switch kind {
	case nutrition.KindIngredient:
		entity = nutrition.IngredientEntity(p.ingredient(m, ""))
	case nutrition.KindMeal:
		entity = nutrition.MealEntity(p.meal(m, ""))
	case nutrition.KindPlan:
		entity = nutrition.PlanEntity(p.plan(m, ""))
	}

	if err := v.validate.Struct(entity.Value()); err != nil {
		v.collect(err, &p.errs)
	}
	if len(p.errs.list) > 0 {
		return invalid(kind, p.errs.list)
	}
	return Outcome{Success: true, Entity: entity}
}

func (v *Validator) collect(err error, errs *fieldErrors) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.add("", err.Error())
		return
	}
	for _, fe := range verrs {
		errs.add(fieldPath(fe.Namespace()), v.message(fe))
	}
}

// fieldPath turns "Meal.ingredients[0].Macros.calories" into
// "ingredients[0].calories".
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return strings.ReplaceAll(rest, "Macros.", "")
}

func (v *Validator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return domain.MsgRequired
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "vocab":
		return "must be one of: " + strings.Join(v.registry.Values(fe.Param()), ", ")
	case tagMinItems:
		if fe.Param() == "1" {
			return "must contain at least 1 item"
		}
		return "must contain at least " + fe.Param() + " items"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func invalid(kind nutrition.EntityKind, errs []FieldError) Outcome {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.String()
	}
	derr := domain.NewError(domain.KindValidation,
		fmt.Sprintf("the %s is incomplete or contains invalid values", kind)).
		WithDetails("fields", errs)

	return Outcome{
		Errors:  errs,
		Message: fmt.Sprintf("invalid %s: %s", kind, strings.Join(parts, "; ")),
		Err:     derr,
	}
}

func parseFailure(kind nutrition.EntityKind, cause error) Outcome {
	return failure(domain.NewError(domain.KindParsing,
		fmt.Sprintf("the %s could not be read", kind)).WithCause(cause), nil)
}

func failure(e *domain.Error, errs []FieldError) Outcome {
	return Outcome{Errors: errs, Message: e.Error(), Err: e}
}

// fieldErrors keeps the first error reported per path, in report order.
type fieldErrors struct {
	list []FieldError
	seen map[string]bool
}

func (f *fieldErrors) add(field, message string) {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	if f.seen[field] {
		return
	}
	f.seen[field] = true
	f.list = append(f.list, FieldError{Field: field, Message: message})
}

// projector maps an untyped decoded object onto the typed entity, recording
// type errors and missing required fields and applying defaults for absent
// optional ones.
type projector struct {
	registry *Registry
	errs     fieldErrors
}

func (p *projector) ingredient(m map[string]any, path string) nutrition.Ingredient {
	defs := p.registry.Defaults()
	return nutrition.Ingredient{
		Name:     p.str(m, "name", path, true),
		Unit:     nutrition.Unit(p.enum(m, "unit", path, string(defs.Unit))),
		Quantity: p.number(m, "quantity", path, false, defs.IngredientQuantity),
		Macros:   p.macros(m, path),
	}
}

func (p *projector) meal(m map[string]any, path string) nutrition.Meal {
	defs := p.registry.Defaults()
	meal := nutrition.Meal{
		Name:        p.str(m, "name", path, true),
		Type:        nutrition.MealType(p.str(m, "type", path, true)),
		Description: p.str(m, "description", path, false),
		Cuisine:     nutrition.Cuisine(p.enum(m, "cuisine", path, string(defs.Cuisine))),
		Unit:        nutrition.Unit(p.enum(m, "unit", path, string(defs.Unit))),
		Quantity:    p.number(m, "quantity", path, false, defs.MealQuantity),
		Macros:      p.macros(m, path),
	}
	items := p.objects(m, "ingredients", path)
	meal.Ingredients = make([]nutrition.Ingredient, 0, len(items))
	for _, item := range items {
		meal.Ingredients = append(meal.Ingredients, p.ingredient(item.value, item.path))
	}
	return meal
}

func (p *projector) plan(m map[string]any, path string) nutrition.Plan {
	plan := nutrition.Plan{
		Name:          p.str(m, "name", path, true),
		Description:   p.str(m, "description", path, false),
		Goal:          nutrition.Goal(p.str(m, "goal", path, true)),
		DurationWeeks: p.integer(m, "durationWeeks", path),
		Macros:        p.macros(m, path),
	}
	items := p.objects(m, "meals", path)
	plan.Meals = make([]nutrition.Meal, 0, len(items))
	for _, item := range items {
		plan.Meals = append(plan.Meals, p.meal(item.value, item.path))
	}
	return plan
}

func (p *projector) macros(m map[string]any, path string) nutrition.Macros {
	return nutrition.Macros{
		Calories: p.number(m, "calories", path, true, 0),
		Carbs:    p.number(m, "carbs", path, true, 0),
		Protein:  p.number(m, "protein", path, true, 0),
		Fat:      p.number(m, "fat", path, true, 0),
	}
}

func lookup(m map[string]any, key string) (any, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func (p *projector) str(m map[string]any, key, path string, required bool) string {
	v, ok := lookup(m, key)
	if !ok {
		if required {
			p.errs.add(joinPath(path, key), domain.MsgRequired)
		}
		return ""
	}
	s, ok := v.(string)
	if !ok {
		p.errs.add(joinPath(path, key), "must be a string")
		return ""
	}
	return s
}

// enum reads an optional enumerated field, substituting def when absent.
// Membership is checked by the vocab validation tag.
func (p *projector) enum(m map[string]any, key, path, def string) string {
	if _, ok := lookup(m, key); !ok {
		return def
	}
	return p.str(m, key, path, false)
}

func (p *projector) number(m map[string]any, key, path string, required bool, def float64) float64 {
	v, ok := lookup(m, key)
	if !ok {
		if required {
			p.errs.add(joinPath(path, key), domain.MsgRequired)
		}
		return def
	}
	f, ok := v.(float64)
	if !ok {
		p.errs.add(joinPath(path, key), "must be a number")
		return def
	}
	return f
}

func (p *projector) integer(m map[string]any, key, path string) int {
	v, ok := lookup(m, key)
	if !ok {
		return 0
	}
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		p.errs.add(joinPath(path, key), "must be an integer")
		return 0
	}
	return int(f)
}

type pathedObject struct {
	value map[string]any
	path  string
}

// objects reads a list of objects. Elements that are not objects are
// reported and skipped.
func (p *projector) objects(m map[string]any, key, path string) []pathedObject {
	v, ok := lookup(m, key)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		p.errs.add(joinPath(path, key), "must be an array")
		return nil
	}
	out := make([]pathedObject, 0, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", joinPath(path, key), i)
		obj, ok := item.(map[string]any)
		if !ok {
			p.errs.add(itemPath, "must be an object")
			continue
		}
		out = append(out, pathedObject{value: obj, path: itemPath})
	}
	return out
}
