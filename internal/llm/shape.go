// Package llm - shape.go renders the "reply with exactly this JSON" part of a prompt.
package llm

import (
	"fmt"
	"strings"
)

// OutputShape describes the JSON object a prompt asks the model to return.
type OutputShape struct {
	Name   string       // Shape name, used in log lines
	Fields []ShapeField // Top-level fields of the reply object
	Rules  []string     // Extra constraints appended after the structure
}

// ShapeField is a single top-level field of the expected reply.
type ShapeField struct {
	Name        string // JSON field name
	Type        string // Type hint or literal example: "number", "\"string\"", "[...]"
	Description string // Description for the model
	Required    bool
}

// BuildStructuredPrompt joins a task description with the JSON reply contract.
func BuildStructuredPrompt(task string, shape OutputShape) string {
	var sb strings.Builder

	sb.WriteString(strings.TrimSpace(task))
	sb.WriteString("\n\n")
	sb.WriteString(shape.Instructions())

	return sb.String()
}

// Instructions renders the reply contract for this shape.
func (s OutputShape) Instructions() string {
	var sb strings.Builder

	sb.WriteString("Respond strictly in JSON format without any markdown code blocks or backticks, matching this exact structure:\n{\n")
	for i, field := range s.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s", field.Name, typeHint))
		if i < len(s.Fields)-1 {
			sb.WriteString(",")
		}
		var notes []string
		if field.Required {
			notes = append(notes, "required")
		}
		if field.Description != "" {
			notes = append(notes, field.Description)
		}
		if len(notes) > 0 {
			sb.WriteString(" // " + strings.Join(notes, "; "))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")

	if len(s.Rules) > 0 {
		sb.WriteString("\nIMPORTANT:\n")
		for _, rule := range s.Rules {
			sb.WriteString("- ")
			sb.WriteString(rule)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
