package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skillgap/internal/skillgap"
)

func newTestEngine(t *testing.T) *skillgap.Engine {
	t.Helper()
	engine, err := skillgap.New(skillgap.DefaultOptions(), nil)
	require.NoError(t, err)
	return engine
}

func TestExtractAll_KeepsInputOrder(t *testing.T) {
	contents := map[string]string{
		"a.json": `{"missing_skills": {"critical": ["Deep Learning"]}}`,
		"b.txt":  `"important": ["Helm"`,
		"c.txt":  "Learn Kubernetes",
		"d.txt":  "nothing to see",
	}
	inputs := []string{"a.json", "b.txt", "c.txt", "d.txt"}

	read := func(name string) ([]byte, error) {
		// Finish out of order
		if name == "a.json" {
			time.Sleep(20 * time.Millisecond)
		}
		return []byte(contents[name]), nil
	}

	results, err := extractAll(context.Background(), newTestEngine(t), inputs, 4, read)

	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, inputs[i], r.Input)
	}
	assert.Equal(t, []string{"Deep Learning"}, results[0].Report.Labels())
	assert.Equal(t, []string{"Helm"}, results[1].Report.Labels())
	assert.Equal(t, []string{"Kubernetes"}, results[2].Report.Labels())
	assert.True(t, results[3].Report.Empty())
}

func TestExtractAll_RespectsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	read := func(string) ([]byte, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return []byte("Docker"), nil
	}

	inputs := make([]string, 12)
	for i := range inputs {
		inputs[i] = fmt.Sprintf("in-%d", i)
	}

	_, err := extractAll(context.Background(), newTestEngine(t), inputs, 2, read)

	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestExtractAll_ReadError(t *testing.T) {
	read := func(name string) ([]byte, error) {
		if name == "bad" {
			return nil, errors.New("permission denied")
		}
		return []byte("Docker"), nil
	}

	_, err := extractAll(context.Background(), newTestEngine(t), []string{"good", "bad"}, 1, read)

	assert.ErrorContains(t, err, "failed to read input bad")
}

func TestExtractInputList(t *testing.T) {
	tests := []struct {
		name     string
		inputs   []string
		expected []string
		wantErr  bool
	}{
		{"Defaults to stdin", nil, []string{"-"}, false},
		{"Files and stdin once", []string{"a.txt", "-", "b.txt"}, []string{"a.txt", "-", "b.txt"}, false},
		{"Same file twice is allowed", []string{"a.txt", "a.txt"}, []string{"a.txt", "a.txt"}, false},
		{"Stdin twice", []string{"-", "-"}, nil, true},
		{"Stdin twice among files", []string{"-", "a.txt", "-"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractInputList(tt.inputs)
			if tt.wantErr {
				assert.ErrorContains(t, err, "at most once")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReadInputFunc(t *testing.T) {
	read := readInputFunc(strings.NewReader("from stdin"))

	data, err := read("-")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", string(data))

	path := writeTempFile(t, "out.txt", "from disk")
	data, err = read(path)
	require.NoError(t, err)
	assert.Equal(t, "from disk", string(data))
}

func TestWriteResults(t *testing.T) {
	report := skillgap.Report{
		Skills:   []skillgap.Skill{{Label: "Helm", Tier: skillgap.TierImportant, Provenance: skillgap.ProvenanceSchemaWalk}},
		Strategy: "schema-walk",
	}

	t.Run("Single input prints the report", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeResults(&buf, []extractResult{{Input: "-", Report: report}}))

		var got skillgap.Report
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, report, got)
	})

	t.Run("Several inputs print an array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeResults(&buf, []extractResult{
			{Input: "a", Report: report},
			{Input: "b", Report: skillgap.Report{Skills: []skillgap.Skill{}}},
		}))

		var got []struct {
			Input  string          `json:"input"`
			Report skillgap.Report `json:"report"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "b", got[1].Input)
		assert.Empty(t, got[1].Report.Skills)
		assert.Contains(t, buf.String(), `"skills": []`)
	})
}
