package core

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/agenthands/geoparse/internal/config"
	"github.com/agenthands/geoparse/internal/core/extraction"
	"github.com/agenthands/geoparse/internal/core/gazetteer"
	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/agenthands/geoparse/internal/core/resolver"
	"github.com/agenthands/geoparse/internal/llm"
)

// NewFromConfig builds a pipeline over ix with the heuristics and resolver
// settings of cfg. client is only needed when extraction.ner is "llm".
func NewFromConfig(cfg *config.Config, ix *gazetteer.Index, client llm.LLMClient, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	priority, err := cfg.Priority()
	if err != nil {
		return nil, err
	}
	res, err := resolver.New(ix, resolver.Options{
		Threshold:  cfg.Resolver.FuzzyThreshold,
		Priority:   priority,
		Weights:    cfg.Resolver.Weights,
		Contextual: cfg.Resolver.ContextualTiebreak,
	})
	if err != nil {
		return nil, err
	}

	extractors, err := Extractors(cfg.Extraction, ix, client)
	if err != nil {
		return nil, err
	}
	order, err := ParseOrder(cfg.Resolver.Order)
	if err != nil {
		return nil, err
	}

	p := NewPipeline(ix, extraction.NewRunner(logger, cfg.Extraction.Parallel, extractors...), res, logger)
	p.MaxCandidates = cfg.Resolver.MaxCandidates
	p.Order = order
	p.CollapseEntities = cfg.Resolver.CollapseEntities
	return p, nil
}

// Extractors returns the enabled heuristics in their fixed order.
func Extractors(cfg config.ExtractionConfig, ix *gazetteer.Index, client llm.LLMClient) ([]extraction.Extractor, error) {
	var out []extraction.Extractor

	ner := strings.ToLower(cfg.NER)
	switch ner {
	case "prose":
	case "llm":
		if client == nil {
			return nil, &model.ConfigurationError{Field: "extraction.ner", Reason: "llm backend selected but no LLM client configured"}
		}
		out = append(out, extraction.NewLLMRecognizer(client, cfg.LLMPrompt))
	case "", "off":
	default:
		return nil, &model.ConfigurationError{Field: "extraction.ner", Reason: fmt.Sprintf("unknown backend %q", cfg.NER)}
	}

	// one tagged document serves both prose heuristics
	if ner == "prose" || cfg.Chunker {
		out = append(out, extraction.NewProse(ner == "prose", cfg.NERLabels, cfg.Chunker))
	}
	if cfg.Capitalized {
		out = append(out, extraction.NewCapitalizedPattern(cfg.StopWords))
	}
	if cfg.GeoIndicators {
		out = append(out, extraction.NewGeoIndicators(cfg.StopWords))
	}
	if cfg.GazetteerScan {
		out = append(out, extraction.NewGazetteerScan(ix, cfg.StopWords))
	}
	return out, nil
}
