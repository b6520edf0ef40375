package fallback

import "strings"

// Apology is appended to every fallback text.
const Apology = "Sorry about that. You can try rephrasing your request or being more specific to get a better result."

// MinimalText is returned when even template selection fails.
const MinimalText = "I can't generate a response right now. Please try again later."

const genericText = "I couldn't generate a complete answer. Here is some general guidance that may still help."

// textTemplates are tried in order; the first whose keywords appear in the
// lowercased query wins.
var textTemplates = []struct {
	keywords []string
	text     string
}{
	{
		keywords: []string{"meal", "repas"},
		text: "I couldn't generate a complete meal. A balanced meal combines a protein, complex carbohydrates " +
			"and vegetables, for example grilled chicken with brown rice and sauteed vegetables.",
	},
	{
		keywords: []string{"plan", "diet", "régime", "regime"},
		text: "I couldn't generate a complete nutrition plan. A good plan includes three or four balanced meals " +
			"a day with a sensible split of protein, carbohydrates and fat.",
	},
	{
		keywords: []string{"ingredient", "ingrédient"},
		text: "I couldn't find complete information about this ingredient. A nutrition database such as " +
			"Open Food Facts has detailed values.",
	},
}

// Text returns an apologetic response for when no structured action could be
// produced. Mentions of meals, plans or ingredients in query pick the
// template. It never returns an empty string.
func (g *Generator) Text(query string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = MinimalText
		}
	}()

	body := genericText
	lower := strings.ToLower(query)
	for _, tpl := range textTemplates {
		if containsAny(lower, tpl.keywords) {
			body = tpl.text
			break
		}
	}
	return body + "\n\n" + Apology
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
