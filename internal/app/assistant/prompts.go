package assistant

import (
	"strings"
	"text/template"

	"github.com/jsamuelsen11/mealplan-assistant/internal/app/schema"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/chat"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

// SystemPrompt frames every request sent to the model.
const SystemPrompt = "You are a nutrition assistant. You answer questions about food, meals and nutrition plans, " +
	"and you help users record meals, plans and ingredients."

var promptFuncs = template.FuncMap{
	"join": strings.Join,
}

var chatTemplate = template.Must(template.New("chat").Funcs(promptFuncs).Parse(`USER QUESTION: {{.Message}}

INSTRUCTIONS:
Answer in {{.Language}}. If the user asks to create a meal, a plan or an ingredient, end your answer with exactly one of the blocks below. Otherwise answer normally without any tags.

To add a meal:
<ADD_MEAL>
{"name": "Name of the meal", "type": "{{join .MealTypes "|"}}", "description": "Short description", "cuisine": "{{join .Cuisines "|"}}", "calories": 300, "carbs": 30, "protein": 15, "fat": 10,
 "ingredients": [{"name": "Ingredient", "quantity": 100, "unit": "{{join .Units "|"}}", "calories": 150, "carbs": 15, "protein": 8, "fat": 5}]}
</ADD_MEAL>

To add a plan:
<ADD_PLAN>
{"name": "Name of the plan", "description": "Short description", "durationWeeks": 4, "goal": "{{join .Goals "|"}}", "calories": 2000, "carbs": 200, "protein": 150, "fat": 70,
 "meals": [ ...meals in the ADD_MEAL format... ]}
</ADD_PLAN>

To add an ingredient:
<ADD_INGREDIENT>
{"name": "Name of the ingredient", "quantity": 100, "unit": "{{join .Units "|"}}", "calories": 150, "carbs": 15, "protein": 8, "fat": 5}
</ADD_INGREDIENT>
`))

var mealTemplate = template.Must(template.New("meal").Funcs(promptFuncs).Parse(`Create one meal{{if .Req.MealType}} for {{.Req.MealType}}{{end}}{{if .Req.Cuisine}} in {{.Req.Cuisine}} cuisine{{end}}.
{{- if .Req.Calories}}
Target about {{.Req.Calories}} kcal.{{end}}
{{- if .Req.Protein}}
Target about {{.Req.Protein}} g protein.{{end}}
{{- if .Req.Carbs}}
Target about {{.Req.Carbs}} g carbohydrates.{{end}}
{{- if .Req.Fat}}
Target about {{.Req.Fat}} g fat.{{end}}
{{- if .Req.Ingredients}}
Use these ingredients: {{join .Req.Ingredients ", "}}.{{end}}
{{- if .Req.Notes}}
Notes from the user: {{.Req.Notes}}{{end}}

Reply with only a JSON object, no prose, in this format:
{"name": "Name of the meal", "type": "{{join .MealTypes "|"}}", "description": "Short description", "cuisine": "{{join .Cuisines "|"}}", "unit": "PORTION", "quantity": 1, "calories": 0, "carbs": 0, "protein": 0, "fat": 0,
 "ingredients": [{"name": "Ingredient", "quantity": 100, "unit": "{{join .Units "|"}}", "calories": 0, "carbs": 0, "protein": 0, "fat": 0}]}
Macros are totals for the quantity given. The meal's macros are the sum of its ingredients.
`))

var planTemplate = template.Must(template.New("plan").Funcs(promptFuncs).Parse(`Create one daily nutrition plan{{if .Req.Goal}} for the goal {{.Req.Goal}}{{end}}.
{{- if .Req.Calories}}
Target about {{.Req.Calories}} kcal a day.{{end}}
{{- if .Req.DurationWeeks}}
The plan lasts {{.Req.DurationWeeks}} weeks.{{end}}
{{- if .Req.Notes}}
Notes from the user: {{.Req.Notes}}{{end}}

Reply with only a JSON object, no prose, in this format:
{"name": "Name of the plan", "description": "Short description", "durationWeeks": 4, "goal": "{{join .Goals "|"}}", "calories": 0, "carbs": 0, "protein": 0, "fat": 0,
 "meals": [{"name": "Name of the meal", "type": "{{join .MealTypes "|"}}", "cuisine": "{{join .Cuisines "|"}}", "calories": 0, "carbs": 0, "protein": 0, "fat": 0,
   "ingredients": [{"name": "Ingredient", "quantity": 100, "unit": "{{join .Units "|"}}", "calories": 0, "carbs": 0, "protein": 0, "fat": 0}]}]}
Include breakfast, lunch and dinner.
`))

// Prompts renders model prompts with the registry's vocabularies so the model
// is asked for exactly the values the validator accepts.
type Prompts struct {
	registry *schema.Registry
	language string
}

// NewPrompts creates a Prompts for registry. An empty language means English.
func NewPrompts(registry *schema.Registry, language string) *Prompts {
	if language == "" {
		language = "en"
	}
	return &Prompts{registry: registry, language: language}
}

type promptData struct {
	Message   string
	Language  string
	Units     []string
	MealTypes []string
	Cuisines  []string
	Goals     []string
	Req       any
}

func (p *Prompts) data() promptData {
	return promptData{
		Language:  p.language,
		Units:     p.registry.Values(nutrition.FieldUnit),
		MealTypes: p.registry.Values(nutrition.FieldMealType),
		Cuisines:  p.registry.Values(nutrition.FieldCuisine),
		Goals:     p.registry.Values(nutrition.FieldGoal),
	}
}

// Chat wraps a user message with the action-tag instructions.
func (p *Prompts) Chat(message string) (string, error) {
	d := p.data()
	d.Message = message
	return render(chatTemplate, d)
}

// Meal renders the generation prompt for req.
func (p *Prompts) Meal(req chat.MealRequest) (string, error) {
	d := p.data()
	d.Req = req
	return render(mealTemplate, d)
}

// Plan renders the generation prompt for req.
func (p *Prompts) Plan(req chat.PlanRequest) (string, error) {
	d := p.data()
	d.Req = req
	return render(planTemplate, d)
}

func render(t *template.Template, data promptData) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
