// Package search fronts the typeahead suggestion endpoint (§6 "/v1/suggest")
// with a Meilisearch index, kept separate from the canonical trie matcher:
// Meilisearch ranks human-facing display names, the trie resolves records.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

// GazetteerSearcher wraps a Meilisearch client bound to a single index of
// denormalized administrative display names: a flat, typo-tolerant lookup,
// since suggestion ranking — unlike canonical resolution — has no notion
// of a resolved key chain to walk.
type GazetteerSearcher struct {
	client    meilisearch.ServiceManager
	logger    *zap.Logger
	indexName string
	timeout   time.Duration
}

// SearchConfig configures the Meilisearch connection.
type SearchConfig struct {
	Host      string
	APIKey    string
	IndexName string
	Timeout   time.Duration
}

// Suggestion is one typeahead result: a display name plus the resolved-key
// hint a client can use to disambiguate among same-named towns.
type Suggestion struct {
	Text  string  `json:"text"`
	Level string  `json:"level"`
	Pref  string  `json:"prefecture"`
	City  string  `json:"city"`
	Town  string  `json:"town,omitempty"`
	Score float64 `json:"score"`
}

// NewGazetteerSearcher dials host and verifies connectivity with Health
// before returning.
func NewGazetteerSearcher(config SearchConfig, logger *zap.Logger) (*GazetteerSearcher, error) {
	client := meilisearch.New(config.Host, meilisearch.WithAPIKey(config.APIKey))

	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("connect to meilisearch: %w", err)
	}

	return &GazetteerSearcher{
		client:    client,
		logger:    logger,
		indexName: config.IndexName,
		timeout:   config.Timeout,
	}, nil
}

// BuildIndexes configures searchable/filterable/sortable attributes and typo
// tolerance for Japanese administrative display names.
func (gs *GazetteerSearcher) BuildIndexes() error {
	index := gs.client.Index(gs.indexName)

	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"text", "pref", "city", "town"},
		FilterableAttributes: []string{"level", "pref", "city"},
		SortableAttributes:   []string{"level"},
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: true,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  3,
				TwoTypos: 7,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("configure suggest index: %w", err)
	}

	gs.logger.Info("configured suggest index", zap.Int64("task_uid", task.TaskUID))
	return nil
}

// suggestDoc is one row indexed into Meilisearch, built from the same
// reference rows the trie loads.
type suggestDoc struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level string `json:"level"`
	Pref  string `json:"pref"`
	City  string `json:"city"`
	Town  string `json:"town,omitempty"`
}

// SeedData indexes display-name rows into Meilisearch in chunked
// AddDocuments batches.
func (gs *GazetteerSearcher) SeedData(rows []suggestDoc) error {
	if len(rows) == 0 {
		return errors.New("search: no rows to seed")
	}

	index := gs.client.Index(gs.indexName)

	var documents []map[string]interface{}
	for _, r := range rows {
		documents = append(documents, map[string]interface{}{
			"id":    r.ID,
			"text":  r.Text,
			"level": r.Level,
			"pref":  r.Pref,
			"city":  r.City,
			"town":  r.Town,
		})
	}

	const batchSize = 1000
	for i := 0; i < len(documents); i += batchSize {
		end := i + batchSize
		if end > len(documents) {
			end = len(documents)
		}
		task, err := index.AddDocuments(documents[i:end], "id")
		if err != nil {
			return fmt.Errorf("seed suggest documents %d-%d: %w", i, end, err)
		}
		gs.logger.Info("seeded suggest batch", zap.Int("from", i), zap.Int("to", end), zap.Int64("task_uid", task.TaskUID))
	}

	gs.logger.Info("suggest index seeded", zap.Int("total_documents", len(documents)))
	return nil
}

// NewSuggestDoc builds one indexable row. Exported so callers outside this
// package can assemble rows for SeedData without reaching into the
// unexported suggestDoc.
func NewSuggestDoc(id, text, level, pref, city, town string) suggestDoc {
	return suggestDoc{ID: id, Text: text, Level: level, Pref: pref, City: city, Town: town}
}

// Suggest runs a typo-tolerant prefix search over display names (§6
// "/v1/suggest"). It never consults the trie: suggestion ranking and
// canonical resolution are deliberately kept on separate paths.
func (gs *GazetteerSearcher) Suggest(ctx context.Context, prefix string, limit int) ([]Suggestion, error) {
	if prefix == "" {
		return nil, errors.New("search: empty suggest query")
	}

	ctx, cancel := context.WithTimeout(ctx, gs.timeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := gs.client.Index(gs.indexName)
	req := &meilisearch.SearchRequest{Limit: int64(limit)}

	result, err := index.Search(prefix, req)
	if err != nil {
		return nil, fmt.Errorf("suggest search: %w", err)
	}

	var out []Suggestion
	for _, hit := range result.Hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		s := Suggestion{}
		if v, ok := hitMap["text"].(string); ok {
			s.Text = v
		}
		if v, ok := hitMap["level"].(string); ok {
			s.Level = v
		}
		if v, ok := hitMap["pref"].(string); ok {
			s.Pref = v
		}
		if v, ok := hitMap["city"].(string); ok {
			s.City = v
		}
		if v, ok := hitMap["town"].(string); ok {
			s.Town = v
		}
		if v, ok := hitMap["_rankingScore"].(float64); ok {
			s.Score = v
		}
		out = append(out, s)
	}
	return out, nil
}
