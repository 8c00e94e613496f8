package skillgap

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Bounds is an inclusive rune-length range for skill labels.
type Bounds struct {
	Min int `json:"min" yaml:"min" validate:"min=1"`
	Max int `json:"max" yaml:"max" validate:"gtefield=Min"`
}

// Contains reports whether n lies within the bounds.
func (b Bounds) Contains(n int) bool {
	return n >= b.Min && n <= b.Max
}

// Options is the injectable configuration of the engine. Every list is consulted
// at extraction time, so vocabularies and alias tables can grow without code changes.
type Options struct {
	// TierFieldAliases maps each tier to the field names the generator uses for it.
	TierFieldAliases map[Tier][]string `validate:"required,min=1,dive,keys,oneof=critical important nice_to_have,endkeys,min=1,dive,required"`
	// SectionAliases names the container holding the tier fields (canonical shape).
	SectionAliases []string `validate:"min=1,dive,required"`
	// ProjectListAliases names the sequence of project objects (alternate shape).
	ProjectListAliases []string `validate:"dive,required"`
	SkillFocusAliases  []string `validate:"dive,required"`
	ProjectAliases     []string `validate:"dive,required"`
	// EnvelopeAliases names fields that carry the original model text inside an error envelope.
	EnvelopeAliases []string `validate:"dive,required"`

	DenyListSubstrings []string `validate:"dive,required"`
	// PlaceholderLabels are rejected when a label equals one of them ("none", "n/a").
	PlaceholderLabels []string `validate:"dive,required"`
	// DenyPatterns are regular expressions; a label matching any of them is rejected.
	DenyPatterns []string `validate:"dive,required"`

	Vocabulary        []string `validate:"dive,required"`
	LabelLengthBounds Bounds
}

// DefaultOptions returns the built-in alias tables, deny-list and vocabulary.
func DefaultOptions() Options {
	return Options{
		TierFieldAliases: map[Tier][]string{
			TierCritical:   {"critical", "critical_skills", "must_have", "high_priority"},
			TierImportant:  {"important", "important_skills", "should_have", "medium_priority"},
			TierNiceToHave: {"nice_to_have", "nice_to_have_skills", "niceToHave", "nice-to-have", "optional", "low_priority"},
		},
		SectionAliases:     []string{"missing_skills", "missingSkills", "skill_gaps", "skill_gap", "skills_gap", "gaps"},
		ProjectListAliases: []string{"recommended_projects", "recommendedProjects", "suggested_projects", "projects"},
		SkillFocusAliases:  []string{"skill_focus", "skillFocus", "focus_skill"},
		ProjectAliases:     []string{"project", "project_description", "description"},
		EnvelopeAliases:    []string{"raw_response", "rawResponse", "raw_output", "raw_text"},
		DenyListSubstrings: []string{
			"model_used", "timestamp", "generated_at", "raw_response",
			"missing_skills", "recommended_projects", "skill_focus", "nice_to_have",
			"gpt-", "gemini-", "claude-", "llama-", "mistral-", "deepseek-",
		},
		PlaceholderLabels: []string{"none", "n/a", "na", "null", "nil", "tbd", "unknown", "not applicable"},
		DenyPatterns: []string{
			`(?i)(?:^|[^a-z0-9])v\d+(?:\.\d+)+`, // version strings such as v0.2
			`\d{4}-\d{2}-\d{2}`,                 // ISO dates
			`\d{2}T(?:\d|$|[^A-Za-z])`,          // ISO date/time separator fragments such as 07T
			`\b\d{1,2}:\d{2}:\d{2}\b`,           // clock times
		},
		Vocabulary:        DefaultVocabulary(),
		LabelLengthBounds: Bounds{Min: 2, Max: 49},
	}
}

// DefaultVocabulary returns the reference list of technology and skill names used by the
// keyword harvester. Short, common English words (Go, R, REST, Excel) are left out because
// whole-token matching would fire on ordinary prose.
func DefaultVocabulary() []string {
	return []string{
		"Python", "Java", "JavaScript", "TypeScript", "Golang", "Rust", "C++", "C#", "Scala", "Kotlin",
		"SQL", "NoSQL", "PostgreSQL", "MySQL", "MongoDB", "Redis",
		"Docker", "Kubernetes", "AWS", "Azure", "GCP", "Terraform", "Linux", "Git", "CI/CD",
		"React", "Angular", "Vue", "Node.js", "Django", "Flask", "FastAPI", "GraphQL", "Microservices",
		"TensorFlow", "PyTorch", "Keras", "scikit-learn", "Pandas", "NumPy", "Spark", "Hadoop", "Kafka",
		"Tableau", "Power BI",
		"Machine Learning", "Deep Learning", "Data Science", "Data Analysis", "Data Visualization",
		"Statistics", "Natural Language Processing", "NLP", "Computer Vision", "Predictive Analytics",
	}
}

// Validate checks the options with struct tags and compiles the deny patterns.
func (o Options) Validate() error {
	validate := validator.New()
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid skillgap options: %w", err)
	}
	if _, err := compilePatterns(o.DenyPatterns); err != nil {
		return err
	}
	return nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid deny pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}
