package nutrition

import (
	"regexp"
	"strings"
)

// Unit is a measurement unit for quantities.
type Unit string

const (
	UnitGrams       Unit = "GRAMMES"
	UnitKilograms   Unit = "KILOGRAMMES"
	UnitMilliliters Unit = "MILLILITRES"
	UnitLiters      Unit = "LITRES"
	UnitPieces      Unit = "PIECES"
	UnitPortion     Unit = "PORTION"
	UnitServing     Unit = "SERVING"
	UnitBowl        Unit = "BOWL"
	UnitPlate       Unit = "PLATE"
	UnitCups        Unit = "TASSES"
	UnitTablespoons Unit = "CUILLERES_A_SOUPE"
	UnitTeaspoons   Unit = "CUILLERES_A_CAFE"
)

// MealType is the slot of the day a meal is eaten in.
type MealType string

const (
	MealBreakfast MealType = "BREAKFAST"
	MealLunch     MealType = "LUNCH"
	MealDinner    MealType = "DINNER"
	MealSnack     MealType = "SNACK"
)

// Cuisine is the culinary style of a meal.
type Cuisine string

const (
	CuisineGeneral   Cuisine = "GENERAL"
	CuisineAfrican   Cuisine = "AFRICAN"
	CuisineAmerican  Cuisine = "AMERICAN"
	CuisineAsian     Cuisine = "ASIAN"
	CuisineCaribbean Cuisine = "CARIBBEAN"
	CuisineChinese   Cuisine = "CHINESE"
	CuisineEuropean  Cuisine = "EUROPEAN"
	CuisineFrench    Cuisine = "FRENCH"
	CuisineIndian    Cuisine = "INDIAN"
	CuisineItalian   Cuisine = "ITALIAN"
	CuisineJapanese  Cuisine = "JAPANESE"
	CuisineMexican   Cuisine = "MEXICAN"
	CuisineQatari    Cuisine = "QATARI"
	CuisineTunisian  Cuisine = "TUNISIAN"
)

// Goal is the objective of a nutrition plan.
type Goal string

const (
	GoalWeightLoss Goal = "WEIGHT_LOSS"
	GoalMaintain   Goal = "MAINTAIN"
	GoalGainMuscle Goal = "GAIN_MUSCLE"
)

// Vocabulary field names, shared by the schema registry and configuration.
const (
	FieldUnit     = "unit"
	FieldMealType = "meal_type"
	FieldCuisine  = "cuisine"
	FieldGoal     = "goal"
)

// DefaultVocabulary returns the built-in closed value sets keyed by field.
func DefaultVocabulary() map[string][]string {
	return map[string][]string{
		FieldUnit: {
			string(UnitGrams), string(UnitKilograms), string(UnitMilliliters), string(UnitLiters),
			string(UnitPieces), string(UnitPortion), string(UnitServing), string(UnitBowl),
			string(UnitPlate), string(UnitCups), string(UnitTablespoons), string(UnitTeaspoons),
		},
		FieldMealType: {
			string(MealBreakfast), string(MealLunch), string(MealDinner), string(MealSnack),
		},
		FieldCuisine: {
			string(CuisineGeneral), string(CuisineAfrican), string(CuisineAmerican), string(CuisineAsian),
			string(CuisineCaribbean), string(CuisineChinese), string(CuisineEuropean), string(CuisineFrench),
			string(CuisineIndian), string(CuisineItalian), string(CuisineJapanese), string(CuisineMexican),
			string(CuisineQatari), string(CuisineTunisian),
		},
		FieldGoal: {
			string(GoalWeightLoss), string(GoalMaintain), string(GoalGainMuscle),
		},
	}
}

var synonyms = map[string]map[string]string{
	FieldUnit: {
		"g": "GRAMMES", "gr": "GRAMMES", "gram": "GRAMMES", "grams": "GRAMMES", "gramme": "GRAMMES",
		"kg": "KILOGRAMMES", "kilogram": "KILOGRAMMES", "kilograms": "KILOGRAMMES", "kilogramme": "KILOGRAMMES",
		"ml": "MILLILITRES", "milliliter": "MILLILITRES", "milliliters": "MILLILITRES", "millilitre": "MILLILITRES",
		"l": "LITRES", "liter": "LITRES", "liters": "LITRES", "litre": "LITRES",
		"piece": "PIECES", "pcs": "PIECES", "pc": "PIECES", "unit": "PIECES", "units": "PIECES",
		"portions": "PORTION", "servings": "SERVING", "bowls": "BOWL", "plates": "PLATE",
		"cup": "TASSES", "cups": "TASSES", "tasse": "TASSES",
		"tbsp": "CUILLERES_A_SOUPE", "tablespoon": "CUILLERES_A_SOUPE", "tablespoons": "CUILLERES_A_SOUPE",
		"cuillere_a_soupe": "CUILLERES_A_SOUPE",
		"tsp": "CUILLERES_A_CAFE", "teaspoon": "CUILLERES_A_CAFE", "teaspoons": "CUILLERES_A_CAFE",
		"cuillere_a_cafe": "CUILLERES_A_CAFE",
	},
	FieldMealType: {
		"petit_dejeuner": "BREAKFAST", "morning": "BREAKFAST",
		"dejeuner": "LUNCH", "midday": "LUNCH",
		"diner": "DINNER", "supper": "DINNER", "souper": "DINNER", "evening": "DINNER",
		"collation": "SNACK", "gouter": "SNACK", "snacks": "SNACK",
	},
	FieldCuisine: {
		"african": "AFRICAN", "africaine": "AFRICAN",
		"american": "AMERICAN", "americaine": "AMERICAN",
		"asian": "ASIAN", "asiatique": "ASIAN",
		"caribbean": "CARIBBEAN", "caribeenne": "CARIBBEAN",
		"chinese": "CHINESE", "chinoise": "CHINESE",
		"european": "EUROPEAN", "europeenne": "EUROPEAN",
		"french": "FRENCH", "francaise": "FRENCH",
		"indian": "INDIAN", "indienne": "INDIAN",
		"italian": "ITALIAN", "italienne": "ITALIAN",
		"japanese": "JAPANESE", "japonaise": "JAPANESE",
		"mexican": "MEXICAN", "mexicaine": "MEXICAN",
		"qatari": "QATARI", "qatarie": "QATARI",
		"tunisian": "TUNISIAN", "tunisienne": "TUNISIAN",
		"other": "GENERAL", "mixed": "GENERAL", "international": "GENERAL", "generale": "GENERAL",
	},
	FieldGoal: {
		"lose": "WEIGHT_LOSS", "lose_weight": "WEIGHT_LOSS", "loss": "WEIGHT_LOSS", "perte_de_poids": "WEIGHT_LOSS",
		"gain": "GAIN_MUSCLE", "muscle_gain": "GAIN_MUSCLE", "build_muscle": "GAIN_MUSCLE",
		"prise_de_masse": "GAIN_MUSCLE", "bulk": "GAIN_MUSCLE",
		"maintenance": "MAINTAIN", "maintien": "MAINTAIN", "maintain_weight": "MAINTAIN",
	},
}

var (
	accentReplacer = strings.NewReplacer(
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"à", "a", "â", "a", "î", "i", "ï", "i",
		"ô", "o", "û", "u", "ù", "u", "ç", "c",
	)
	separatorPattern = regexp.MustCompile(`[\s\-]+`)
)

// Canonicalize folds case, accents and separators so "Petit-déjeuner" and
// "petit dejeuner" compare equal.
func Canonicalize(raw string) string {
	s := accentReplacer.Replace(strings.ToLower(strings.TrimSpace(raw)))
	return separatorPattern.ReplaceAllString(s, "_")
}

// Normalize maps raw onto a candidate canonical value for field. The result is
// the upper-cased canonical form, or the synonym target when one is known.
// Callers still check membership in their vocabulary.
func Normalize(field, raw string) string {
	key := Canonicalize(raw)
	if key == "" {
		return ""
	}
	if target, ok := synonyms[field][key]; ok {
		return target
	}
	return strings.ToUpper(key)
}

var mealTypeKeywords = []struct {
	keywords []string
	mealType MealType
}{
	{[]string{"breakfast", "petit_dejeuner", "brunch"}, MealBreakfast},
	{[]string{"lunch", "dejeuner"}, MealLunch},
	{[]string{"dinner", "diner", "souper", "supper"}, MealDinner},
	{[]string{"snack", "collation", "gouter"}, MealSnack},
}

// InferMealType guesses a meal type from keywords in a meal name. The name is
// canonicalized first, so "Petit-déjeuner" matches breakfast before the
// "dejeuner" lunch keyword is tried.
func InferMealType(name string) (MealType, bool) {
	s := Canonicalize(name)
	for _, entry := range mealTypeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(s, kw) {
				return entry.mealType, true
			}
		}
	}
	return "", false
}
