package skillgap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions_Valid(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"Unknown tier key", func(o *Options) { o.TierFieldAliases["urgent"] = []string{"urgent"} }},
		{"Tier without aliases", func(o *Options) { o.TierFieldAliases[TierCritical] = []string{} }},
		{"Blank tier alias", func(o *Options) { o.TierFieldAliases[TierImportant] = []string{"important", ""} }},
		{"No tier aliases", func(o *Options) { o.TierFieldAliases = nil }},
		{"No section aliases", func(o *Options) { o.SectionAliases = []string{} }},
		{"Blank vocabulary entry", func(o *Options) { o.Vocabulary = append(o.Vocabulary, "") }},
		{"Zero minimum length", func(o *Options) { o.LabelLengthBounds = Bounds{Min: 0, Max: 10} }},
		{"Maximum below minimum", func(o *Options) { o.LabelLengthBounds = Bounds{Min: 5, Max: 4} }},
		{"Invalid deny pattern", func(o *Options) { o.DenyPatterns = []string{`[a-`} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			assert.Error(t, opts.Validate())
		})
	}
}

func TestBounds_Contains(t *testing.T) {
	b := Bounds{Min: 2, Max: 49}
	assert.False(t, b.Contains(1))
	assert.True(t, b.Contains(2))
	assert.True(t, b.Contains(49))
	assert.False(t, b.Contains(50))
}

func TestDefaultVocabulary_LeavesOutCommonWords(t *testing.T) {
	vocab := DefaultVocabulary()
	for _, word := range []string{"Go", "R", "REST", "Excel"} {
		assert.NotContains(t, vocab, word)
	}
	assert.Contains(t, vocab, "Golang")
}
