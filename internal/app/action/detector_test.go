package action

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/mealplan-assistant/internal/app/schema"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

const (
	mealJSON = `{"name": "Chicken Bowl", "type": "LUNCH", "cuisine": "ASIAN", "calories": 520, "carbs": 48, ` +
		`"protein": 42, "fat": 14, "ingredients": [{"name": "Rice", "unit": "GRAMMES", "quantity": 150, ` +
		`"calories": 195, "carbs": 42, "protein": 4, "fat": 0.4}]}`
	planJSON = `{"name": "Summer cut", "goal": "WEIGHT_LOSS", "durationWeeks": 6, "calories": 1800, "carbs": 170, ` +
		`"protein": 150, "fat": 55, "meals": [` + mealJSON + `]}`
	ingredientJSON = `{"name": "Oats", "unit": "GRAMMES", "quantity": 40, "calories": 150, "carbs": 27, ` +
		`"protein": 5, "fat": 3}`
)

func newDetector() *Detector {
	return NewDetector(schema.NewValidator(schema.DefaultRegistry()), DefaultTags())
}

func payloadFor(kind nutrition.EntityKind) string {
	switch kind {
	case nutrition.KindPlan:
		return planJSON
	case nutrition.KindIngredient:
		return ingredientJSON
	default:
		return mealJSON
	}
}

func TestDetect_PrimaryTags(t *testing.T) {
	t.Parallel()

	d := newDetector()
	for _, ts := range DefaultTags() {
		t.Run(string(ts.Action), func(t *testing.T) {
			t.Parallel()

			text := "Sure! " + ts.Start + "\n" + payloadFor(ts.Kind) + "\n" + ts.End + "\nEnjoy."
			det := d.Detect(text)

			require.True(t, det.IsValid, det.ValidationMessage)
			assert.Equal(t, ts.Action, det.Kind)
			assert.Equal(t, ts.Kind, det.Entity.Kind)
			assert.True(t, det.Tagged)
			assert.Equal(t, payloadFor(ts.Kind), det.RawPayload)
		})
	}
}

func TestDetect_AlternativeTagsMatchPrimary(t *testing.T) {
	t.Parallel()

	d := newDetector()
	for _, ts := range DefaultTags() {
		primary := d.Detect(ts.Start + payloadFor(ts.Kind) + ts.End)
		require.True(t, primary.IsValid, primary.ValidationMessage)

		for _, alt := range ts.Alternatives {
			ends := []string{ts.End, DeriveEndTag(alt)}
			if nested, ok := nestedEndTag(alt); ok {
				ends = append(ends, nested)
			}
			for _, end := range ends {
				text := "Here you go " + alt + payloadFor(ts.Kind) + end + " bye"
				t.Run(alt+"..."+end, func(t *testing.T) {
					t.Parallel()

					det := d.Detect(text)
					assert.Equal(t, primary.Kind, det.Kind)
					assert.Equal(t, primary.IsValid, det.IsValid)
					assert.Equal(t, primary.Entity, det.Entity)
					assert.Equal(t, primary.RawPayload, det.RawPayload)
				})
			}
		}
	}
}

func TestDetect_CaseInsensitiveTags(t *testing.T) {
	t.Parallel()

	det := newDetector().Detect("<add_meal>" + mealJSON + "</Add_Meal>")

	require.True(t, det.IsValid, det.ValidationMessage)
	assert.Equal(t, nutrition.ActionAddMeal, det.Kind)
}

func TestDeriveEndTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		start string
		want  string
	}{
		{"<ADD-MEAL>", "</ADD_MEAL>"},
		{"<<ADD_PLAN>>", "</<ADD_PLAN>>"},
		{"<MEAL>", "</MEAL>"},
		{"<AJOUTER-REPAS-X>", "</AJOUTER_REPAS-X>"},
	}

	for _, tt := range tests {
		if got := DeriveEndTag(tt.start); got != tt.want {
			t.Errorf("DeriveEndTag(%q) = %q, want %q", tt.start, got, tt.want)
		}
	}
}

func TestNestedEndTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		start  string
		want   string
		wantOK bool
	}{
		{"<<ADD_PLAN>>", "<</ADD_PLAN>>", true},
		{"<<ADD-MEAL>>", "<</ADD_MEAL>>", true},
		{"<ADD_MEAL>", "", false},
		{"ADD_MEAL", "", false},
	}

	for _, tt := range tests {
		got, ok := nestedEndTag(tt.start)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("nestedEndTag(%q) = %q, %v; want %q, %v", tt.start, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDetect_NoAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{"plain prose", "Eat more vegetables and drink water."},
		{"empty", ""},
		{"empty tag block", "<ADD_MEAL>  \n </ADD_MEAL>"},
		{"untagged json followed by prose", "Here is your meal: " + mealJSON + " Enjoy it!"},
		{"unrelated json", `Profile: {"name": "Sam", "age": 31, "city": "Lyon"}`},
		{"json not starting with name", `{"type": "LUNCH", "name": "x", "ingredients": []}`},
	}

	d := newDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			det := d.Detect(tt.text)
			assert.True(t, det.None())
			assert.True(t, det.IsValid)
			assert.Empty(t, det.ValidationMessage)
			assert.True(t, det.Entity.IsZero())
		})
	}
}

func TestDetect_UntaggedTrailingJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want nutrition.ActionKind
	}{
		{"meal", "Here is your meal: " + mealJSON, nutrition.ActionAddMeal},
		{"meal with trailing whitespace", "Try this:\n" + mealJSON + "\n\n", nutrition.ActionAddMeal},
		{"plan", "Your plan:\n" + planJSON, nutrition.ActionAddPlan},
		{"ingredient", "Add " + ingredientJSON, nutrition.ActionAddIngredient},
		{"unclosed tag", "<ADD_MEAL>" + mealJSON, nutrition.ActionAddMeal},
		{"repairable meal", "Meal: " + strings.Replace(mealJSON, `"cuisine": "ASIAN"`, `"cuisine": None`, 1),
			nutrition.ActionAddMeal},
	}

	d := newDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			det := d.Detect(tt.text)
			require.True(t, det.IsValid, det.ValidationMessage)
			assert.Equal(t, tt.want, det.Kind)
			assert.False(t, det.Tagged)
			assert.True(t, strings.HasPrefix(det.RawPayload, `{"name"`))
		})
	}
}

func TestDetect_TaggedBeatsUntagged(t *testing.T) {
	t.Parallel()

	text := "<ADD_INGREDIENT>" + ingredientJSON + "</ADD_INGREDIENT>\nAlso: " + mealJSON
	det := newDetector().Detect(text)

	assert.Equal(t, nutrition.ActionAddIngredient, det.Kind)
	assert.True(t, det.Tagged)
}

func TestDetect_FirstFamilyWins(t *testing.T) {
	t.Parallel()

	text := "<ADD_INGREDIENT>" + ingredientJSON + "</ADD_INGREDIENT> and <ADD_MEAL>" + mealJSON + "</ADD_MEAL>"
	det := newDetector().Detect(text)

	assert.Equal(t, nutrition.ActionAddMeal, det.Kind)
}

func TestDetect_PlanInsideMealTags(t *testing.T) {
	t.Parallel()

	d := newDetector()

	det := d.Detect("Here is your nutrition plan <ADD_MEAL>" + planJSON + "</ADD_MEAL>")
	require.True(t, det.IsValid, det.ValidationMessage)
	assert.Equal(t, nutrition.ActionAddPlan, det.Kind)
	require.NotNil(t, det.Entity.Plan)
	assert.Equal(t, nutrition.GoalWeightLoss, det.Entity.Plan.Goal)

	// A real meal still validates as a meal when the prose mentions a plan.
	det = d.Detect("This fits your plan alimentaire <ADD_MEAL>" + mealJSON + "</ADD_MEAL>")
	require.True(t, det.IsValid, det.ValidationMessage)
	assert.Equal(t, nutrition.ActionAddMeal, det.Kind)
}

func TestDetect_InvalidPayload(t *testing.T) {
	t.Parallel()

	det := newDetector().Detect(`<ADD_MEAL>{"name": "Toast", "type": "BREAKFAST"}</ADD_MEAL>`)

	assert.Equal(t, nutrition.ActionAddMeal, det.Kind)
	assert.False(t, det.IsValid)
	assert.True(t, det.Entity.IsZero())
	require.NotNil(t, det.Err)
	assert.Equal(t, domain.KindValidation, det.Err.Kind)
	assert.Equal(t, domain.FormatForUser(det.Err), det.ValidationMessage)

	fields := make([]string, 0, len(det.Errors))
	for _, fe := range det.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Subset(t, fields, []string{"calories", "carbs", "protein", "fat", "ingredients"})
}

func TestDetect_RepairsTaggedPayload(t *testing.T) {
	t.Parallel()

	payload := "```json\n" + strings.TrimSuffix(mealJSON, "}") + ",}\n```"
	det := newDetector().Detect("<ADD_MEAL>" + payload + "</ADD_MEAL>")

	require.True(t, det.IsValid, det.ValidationMessage)
	assert.Equal(t, "Chicken Bowl", det.Entity.Name())
	assert.Equal(t, payload, det.RawPayload)
}

func TestDetect_InternalFaultBecomesInvalidNone(t *testing.T) {
	t.Parallel()

	d := NewDetector(nil, DefaultTags())

	var det Detection
	require.NotPanics(t, func() { det = d.Detect("<ADD_MEAL>" + mealJSON + "</ADD_MEAL>") })

	assert.True(t, det.None())
	assert.False(t, det.IsValid)
	require.NotNil(t, det.Err)
	assert.Equal(t, domain.KindUnknown, det.Err.Kind)
	assert.Equal(t, domain.GenericUserMessage, det.ValidationMessage)
}

func TestDetect_Concurrent(t *testing.T) {
	t.Parallel()

	d := newDetector()
	done := make(chan Detection, 16)
	for range 16 {
		go func() { done <- d.Detect("<ADD_PLAN>" + planJSON + "</ADD_PLAN>") }()
	}
	for range 16 {
		det := <-done
		assert.True(t, det.IsValid)
		assert.Equal(t, nutrition.ActionAddPlan, det.Kind)
	}
}
