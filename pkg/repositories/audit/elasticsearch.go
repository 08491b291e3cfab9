package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/pkg/entities"
)

const settlementMapping = `{
	"mappings": {
		"properties": {
			"event_id": { "type": "keyword" },
			"game_id": { "type": "keyword" },
			"player_id": { "type": "keyword" },
			"bet": { "type": "long" },
			"multiplier": { "type": "float" },
			"dealer_cards": { "type": "object", "enabled": false },
			"dealer_value": { "type": "integer" },
			"hands": {
				"type": "nested",
				"properties": {
					"value": { "type": "integer" },
					"stake": { "type": "long" },
					"result": { "type": "keyword" },
					"credit": { "type": "long" },
					"doubled": { "type": "boolean" }
				}
			},
			"total_stake": { "type": "long" },
			"total_credit": { "type": "long" },
			"net": { "type": "long" },
			"forced": { "type": "boolean" },
			"credit_error": { "type": "text" },
			"settled_at": { "type": "date" }
		}
	}
}`

// ElasticsearchConfig holds configuration options for the Elasticsearch sink
type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
	Transport   http.RoundTripper // Optional, for tests
}

// DefaultElasticsearchConfig returns a default configuration for Elasticsearch
func DefaultElasticsearchConfig() *ElasticsearchConfig {
	return &ElasticsearchConfig{
		URL:         "http://localhost:9200",
		IndexPrefix: "tucoblackjack",
	}
}

// ElasticsearchStore indexes settlement events for search and dashboards
type ElasticsearchStore struct {
	client *elasticsearch.Client
	index  string
	logger *logging.Logger
}

// NewElasticsearchStore creates the client and makes sure the settlements index exists
func NewElasticsearchStore(ctx context.Context, config *ElasticsearchConfig, logger *logging.Logger) (*ElasticsearchStore, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{config.URL},
		Transport: config.Transport,
	}

	// Add authentication if provided
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	prefix := config.IndexPrefix
	if prefix == "" {
		prefix = "tucoblackjack"
	}

	store := &ElasticsearchStore{
		client: client,
		index:  prefix + "_settlements",
		logger: logging.OrDefault(logger).WithComponent("audit_es"),
	}

	if err := store.initIndex(ctx); err != nil {
		return nil, fmt.Errorf("error initializing index: %w", err)
	}

	return store, nil
}

// Index returns the name of the settlements index
func (s *ElasticsearchStore) Index() string {
	return s.index
}

// initIndex creates the settlements index if it doesn't exist
func (s *ElasticsearchStore) initIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("error checking if index exists: %w", err)
	}
	res.Body.Close()

	if res.StatusCode != http.StatusNotFound {
		return nil
	}

	req := esapi.IndicesCreateRequest{
		Index: s.index,
		Body:  strings.NewReader(settlementMapping),
	}

	res, err = req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("error creating settlements index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating settlements index: %s", res.String())
	}

	s.logger.Info("created index", "index", s.index)
	return nil
}

// Record implements Sink. The event ID is the document ID so a replay overwrites.
func (s *ElasticsearchStore) Record(ctx context.Context, event *entities.SettlementEvent) error {
	if err := validate(event); err != nil {
		return err
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling settlement: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(jsonData),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(event.ID),
	)
	if err != nil {
		return fmt.Errorf("error indexing settlement: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing settlement: %s", res.String())
	}

	return nil
}

// ListByPlayer implements Store
func (s *ElasticsearchStore) ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entities.SettlementEvent, error) {
	if limit <= 0 {
		limit = 10
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"player_id": playerID},
		},
		"sort": []interface{}{
			map[string]interface{}{"settled_at": map[string]string{"order": "desc"}},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
		s.client.Search.WithSize(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("error searching settlements: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching settlements: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source entities.SettlementEvent `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error parsing settlements: %w", err)
	}

	events := make([]*entities.SettlementEvent, 0, len(result.Hits.Hits))
	for i := range result.Hits.Hits {
		events = append(events, &result.Hits.Hits[i].Source)
	}
	return events, nil
}

// PruneOlderThan implements Store
func (s *ElasticsearchStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf(`{"query":{"range":{"settled_at":{"lt":%q}}}}`, cutoff.UTC().Format(time.RFC3339))

	res, err := s.client.DeleteByQuery(
		[]string{s.index},
		strings.NewReader(query),
		s.client.DeleteByQuery.WithContext(ctx),
	)
	if err != nil {
		return 0, fmt.Errorf("error pruning settlements: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("error pruning settlements: %s", res.String())
	}

	var result struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("error parsing prune response: %w", err)
	}
	return result.Deleted, nil
}

// Close implements Store
func (s *ElasticsearchStore) Close() error {
	return nil
}
