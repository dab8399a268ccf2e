package chat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/service/history"

	_ "embed"

	"github.com/elliotchance/pie/v2"
)

//go:embed prompt_template.txt
var promptTemplate string

func buildPrompt(state *State) string {
	templateValues := map[string]any{
		"facts":   formatFacts(state.KnownFacts),
		"history": formatHistory(state.RetrievedContext),
		"terms":   formatTerms(state.DetectedTerms),
		"message": state.InputMessage,
	}

	prompt := promptTemplate
	for key, value := range templateValues {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", fmt.Sprint(value))
	}

	return prompt
}

func formatFacts(facts string) string {
	if facts == "" {
		return "None"
	}

	return strings.TrimRight(facts, "\n")
}

func formatHistory(turns []history.Turn) string {
	if len(turns) == 0 {
		return "No prior messages"
	}

	lines := pie.Map(turns, func(t history.Turn) string {
		return fmt.Sprintf("%s - %s: %s", t.Timestamp.Format("15:04:05"), t.Role, t.Text)
	})

	return strings.Join(lines, "\n")
}

// formatTerms renders categories in sorted order so the prompt is stable for
// identical input.
func formatTerms(detected map[string][]string) string {
	if len(detected) == 0 {
		return "None"
	}

	categories := make([]string, 0, len(detected))
	for category := range detected {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	lines := pie.Map(categories, func(category string) string {
		return fmt.Sprintf("%s: %s", category, strings.Join(detected[category], ", "))
	})

	return strings.Join(lines, "\n")
}
