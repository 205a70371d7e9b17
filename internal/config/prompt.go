package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
)

const defaultInstructions = `You are {{.AgentName}}, a friendly phone assistant for {{.CompanyName}}.
Keep answers short and conversational; the caller is listening, not reading.
Ask one question at a time and confirm details back to the caller.`

type promptData struct {
	AgentName   string
	CompanyName string
}

// Prompt renders the behavioral prompt sent with the realtime session. The
// prompt file, when configured, wins over AGENT_INSTRUCTIONS.
func (a *AgentConfig) Prompt() (string, error) {
	source := a.Instructions
	if a.PromptFile != "" {
		raw, err := os.ReadFile(a.PromptFile)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt file: %w", err)
		}
		source = string(raw)
	}
	return renderPrompt(source, promptData{AgentName: a.Name, CompanyName: a.CompanyName})
}

func renderPrompt(source string, data promptData) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(source)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
