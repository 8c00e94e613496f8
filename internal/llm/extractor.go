package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes the JSON object a prompt asks the model to return.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "SkillGap")
	Description string        // Preamble describing the task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the requested output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint shown to the model
	Description string // Description for the model
	Required    bool
}

// BuildExtractionPrompt renders the schema as an output contract followed by the
// labelled input sections, in the order given.
func BuildExtractionPrompt(schema ExtractionSchema, sections ...PromptSection) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = `"string"`
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		fmt.Fprintf(&sb, "  %q: %s%s", field.Name, typeHint, requiredHint)
		if field.Description != "" {
			fmt.Fprintf(&sb, " // %s", field.Description)
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n")
	sb.WriteString("- Use short skill names (\"Kubernetes\", not \"experience with Kubernetes\").\n")

	for _, section := range sections {
		fmt.Fprintf(&sb, "\n%s:\n\"\"\"\n%s\n\"\"\"\n", section.Title, strings.TrimSpace(section.Body))
	}

	return sb.String()
}

// PromptSection is one block of input text quoted into a prompt.
type PromptSection struct {
	Title string
	Body  string
}

// SkillGapSchema returns the output contract for a skill-gap analysis: missing skills
// grouped by urgency, plus projects that would close the gaps.
func SkillGapSchema(preamble string) ExtractionSchema {
	return ExtractionSchema{
		Name:        "SkillGap",
		Description: preamble,
		Fields: []SchemaField{
			{
				Name:        "missing_skills",
				Type:        `{"critical": ["string"], "important": ["string"], "nice_to_have": ["string"]}`,
				Description: "Skills the job requires that the resume does not show, grouped by urgency",
				Required:    true,
			},
			{
				Name:        "recommended_projects",
				Type:        `[{"skill_focus": "string", "project": "string"}]`,
				Description: "Short projects that would demonstrate the missing skills",
				Required:    false,
			},
		},
	}
}
