package agent

import (
	"strings"
	"text/template"
)

// systemPromptTemplate is the fixed system persona (spec §4.6, §9
// "Prompt as data"), generalized from
// original_source/Backend/services/langgraph_agent.py's generate_node
// ChatPromptTemplate system message into a Go text/template so its
// contract is assertable in tests rather than buried in string
// concatenation.
const systemPromptTemplate = `You are a helpful assistant specialized in Sri Lankan law.

Your responsibilities:
1. Answer questions accurately using the provided context
2. Cite sources using [name] format after relevant sentences
3. If context is insufficient, acknowledge the limitation and recommend consulting a qualified legal professional
4. Adapt your tone: professional for technical questions, accessible for general queries
5. Always end your answer with a friendly follow-up question to continue the conversation

Context from legal documents:
{{.Context}}

Citations available: {{.Citations}}

Provide your answer in {{.Language}}.`

var promptTmpl = template.Must(template.New("system").Parse(systemPromptTemplate))

// promptData is the data rendered into the system prompt.
type promptData struct {
	Context   string
	Citations string
	Language  string
}

// renderSystemPrompt renders the fixed persona with the per-request
// context, citation list, and target output language.
func renderSystemPrompt(context string, citations []string, language string) string {
	var buf strings.Builder
	data := promptData{
		Context:   context,
		Citations: strings.Join(citations, ", "),
		Language:  language,
	}
	// template.Must already validated the template at package init;
	// Execute against a strings.Builder cannot fail.
	_ = promptTmpl.Execute(&buf, data)
	return buf.String()
}
