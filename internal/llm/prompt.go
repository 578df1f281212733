package llm

import "strings"

const answerPromptTemplate = `You are an assistant reading GitHub notification emails about pull requests.

{{.History}}User query:
{{.Query}}

Relevant pull request records:
{{.Context}}

Answer the user's question concisely by analyzing these records.
Extract important details such as:
- what each record is about
- links
- actions requested (PR merged, review requested, security issue, bug fix, performance improvement, etc.)
- summary of the conversation when several emails were merged
- final actionable insights

Return a clean explanation.`

// BuildAnswerPrompt assembles the synthesis prompt from the user query, the
// bounded retrieval context and optional prior conversation turns.
func BuildAnswerPrompt(query, context string, history []Turn) string {
	var hist strings.Builder
	if len(history) > 0 {
		hist.WriteString("Conversation so far:\n")
		for _, turn := range history {
			hist.WriteString(strings.ToUpper(turn.Role))
			hist.WriteString(": ")
			hist.WriteString(turn.Content)
			hist.WriteString("\n")
		}
		hist.WriteString("\n")
	}

	prompt := strings.ReplaceAll(answerPromptTemplate, "{{.History}}", hist.String())
	prompt = strings.ReplaceAll(prompt, "{{.Query}}", query)
	prompt = strings.ReplaceAll(prompt, "{{.Context}}", context)
	return prompt
}

// Turn is one prior exchange in a conversation session.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
