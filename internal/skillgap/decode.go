package skillgap

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Document is a successfully decoded model response: a tree of
// map[string]any, []any, string, json.Number, bool and nil.
type Document struct {
	Root any
}

// Object returns the root as a mapping, if it is one.
func (d *Document) Object() (map[string]any, bool) {
	m, ok := d.Root.(map[string]any)
	return m, ok
}

// Decode interprets text as one complete JSON document. It tries the text as given,
// then with a markdown code fence removed, then the outermost {...} slice. Any other
// shape of input fails with *DecodeError.
func Decode(text string) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &DecodeError{Message: "empty input"}
	}

	var firstErr error
	for _, candidate := range decodeCandidates(text) {
		root, err := decodeStrict(candidate)
		if err == nil {
			return &Document{Root: root}, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	return nil, &DecodeError{Message: "not a complete document", Cause: firstErr}
}

// decodeCandidates returns the distinct slices of text worth handing to the decoder.
func decodeCandidates(text string) []string {
	text = strings.TrimSpace(text)
	candidates := []string{text}

	if unfenced := stripCodeFence(text); unfenced != text {
		candidates = append(candidates, unfenced)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if sliced := text[start : end+1]; sliced != text {
			candidates = append(candidates, sliced)
		}
	}

	return candidates
}

func decodeStrict(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}

	// A complete document is the only thing in the text.
	var trailing any
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected content after document")
		}
		return nil, err
	}

	return root, nil
}

// stripCodeFence removes a ```json ... ``` or ``` ... ``` wrapper.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// Drop a language identifier on the opening line.
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(text[:idx])
		if !strings.ContainsAny(firstLine, "{[ ") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
