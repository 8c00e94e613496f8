package skillgap

import (
	"log/slog"
)

// maxEnvelopeDepth limits how many nested error envelopes are unwrapped.
const maxEnvelopeDepth = 1

// Input is the per-call state every strategy reads. It is created fresh for each
// extraction and never shared.
type Input struct {
	Raw        string
	Normalized string
	// Document is nil when strict decoding failed; DecodeErr then says why.
	Document  *Document
	DecodeErr error

	depth int
}

// Extractor is one recovery strategy. Strategies are tried in order until the merged
// result is non-empty.
type Extractor interface {
	Name() string
	Extract(in *Input) []Candidate
}

// Engine runs the full recovery pipeline: normalize, decode, then the strategy chain
// (schema walk, fallback patterns, keyword harvest), then merge.
// An Engine holds no per-call state and is safe for concurrent use.
type Engine struct {
	opts       Options
	walker     *Walker
	fallback   *FallbackExtractor
	harvester  *Harvester
	merger     *Merger
	strategies []Extractor
	logger     *slog.Logger
}

// New validates opts and builds an engine. A nil logger uses slog.Default().
func New(opts Options, logger *slog.Logger) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	merger, err := NewMerger(opts)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		opts:      opts,
		walker:    NewWalker(opts, logger),
		fallback:  NewFallbackExtractor(opts, logger),
		harvester: NewHarvester(opts.Vocabulary),
		merger:    merger,
		logger:    logger.With("component", "skillgap.engine"),
	}
	e.strategies = []Extractor{
		&schemaStrategy{engine: e},
		&fallbackStrategy{fallback: e.fallback, harvester: e.harvester},
		&harvestStrategy{harvester: e.harvester},
	}
	return e, nil
}

// MustNew is New for options known to be valid; it panics otherwise.
func MustNew(opts Options, logger *slog.Logger) *Engine {
	e, err := New(opts, logger)
	if err != nil {
		panic(err)
	}
	return e
}

// Options returns the configuration the engine was built with.
func (e *Engine) Options() Options {
	return e.opts
}

// Extract recovers a skill-gap report from raw model output. It never fails: input with
// nothing recoverable yields a report with no skills.
func (e *Engine) Extract(raw string) Report {
	return e.extract(raw, 0)
}

func (e *Engine) extract(raw string, depth int) Report {
	in := e.prepare(raw, depth)

	var candidates []Candidate
	for _, strategy := range e.strategies {
		found := strategy.Extract(in)
		if len(found) == 0 {
			continue
		}
		candidates = append(candidates, found...)

		report := e.merger.Merge(candidates)
		if !report.Empty() {
			report.Strategy = strategy.Name()
			e.logger.Debug("extraction complete",
				"strategy", report.Strategy,
				"candidates", len(candidates),
				"skills", len(report.Skills))
			return report
		}
	}

	e.logger.Debug("no skills recovered", "input_length", len(raw))
	return Report{Skills: []Skill{}}
}

// prepare normalizes the raw text and attempts strict decoding once.
func (e *Engine) prepare(raw string, depth int) *Input {
	in := &Input{Raw: raw, Normalized: Normalize(raw), depth: depth}
	doc, err := Decode(in.Normalized)
	if err != nil {
		e.logger.Debug("strict decode failed, falling back to text scan", "error", err)
		in.DecodeErr = err
		return in
	}
	in.Document = doc
	return in
}

// schemaStrategy reads decoded documents and unwraps error envelopes.
type schemaStrategy struct {
	engine *Engine
}

func (s *schemaStrategy) Name() string { return string(ProvenanceSchemaWalk) }

func (s *schemaStrategy) Extract(in *Input) []Candidate {
	if in.Document == nil {
		return nil
	}
	e := s.engine

	result := e.walker.Walk(in.Document)
	candidates := result.Candidates
	for _, desc := range result.Descriptions {
		candidates = append(candidates, e.harvester.Harvest(desc)...)
	}

	if in.depth < maxEnvelopeDepth {
		for _, inner := range result.Envelopes {
			nested := e.extract(inner, in.depth+1)
			for _, skill := range nested.Skills {
				candidates = append(candidates, Candidate(skill))
			}
		}
	}

	return candidates
}

// fallbackStrategy scans the normalized text, then the raw text, for known fields.
// It only runs when strict decoding failed.
type fallbackStrategy struct {
	fallback  *FallbackExtractor
	harvester *Harvester
}

func (s *fallbackStrategy) Name() string { return string(ProvenanceFallbackPattern) }

func (s *fallbackStrategy) Extract(in *Input) []Candidate {
	if in.Document != nil {
		return nil
	}
	found := s.fallback.Extract(in.Normalized)
	if found.Empty() && in.Raw != in.Normalized {
		found = s.fallback.Extract(in.Raw)
	}

	candidates := found.Candidates
	for _, desc := range found.Descriptions {
		candidates = append(candidates, s.harvester.Harvest(desc)...)
	}
	return candidates
}

// harvestStrategy is the last resort for undecodable text: vocabulary matches
// anywhere in it. A decoded document with no gaps stays empty.
type harvestStrategy struct {
	harvester *Harvester
}

func (s *harvestStrategy) Name() string { return string(ProvenanceKeywordHarvest) }

func (s *harvestStrategy) Extract(in *Input) []Candidate {
	if in.Document != nil {
		return nil
	}
	return s.harvester.Harvest(in.Normalized)
}
