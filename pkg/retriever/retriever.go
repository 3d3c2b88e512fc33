// Package retriever implements the vector-search half of the search tool
// (C7): it embeds the caller's query, narrows the search to the branch's
// allowed filter values, and queries one of the tenant's named Qdrant
// collections. Grounded on the source's retriever_faq_services.py /
// retriever_product.py, using plain net/http against Qdrant's REST API —
// no client SDK in the pack covers Qdrant, so this talks to the wire
// protocol directly, the same way pkg/crm does for the CRM backend.
package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ai2b-pro/toolfleet/pkg/retriever/embed"
)

const denseVectorName = "ada-embedding"

// Hit is one scored search result, already flattened from Qdrant's payload.
// Not every field is populated by every collection: FAQ hits carry
// Question/Answer, service/product hits carry the rest.
type Hit struct {
	ProductID              string  `json:"product_id,omitempty"`
	ProductName            string  `json:"product_name,omitempty"`
	Duration               string  `json:"duration,omitempty"`
	Price                  string  `json:"price,omitempty"`
	Description            string  `json:"description,omitempty"`
	PreSessionInstructions string  `json:"pre_session_instructions,omitempty"`
	Question               string  `json:"question,omitempty"`
	Answer                 string  `json:"answer,omitempty"`
	Score                  float32 `json:"score"`
}

// Filters narrows a search to the values a branch's catalogue actually
// supports, sourced from pkg/catalogue.Keys at tool-builder construction
// time.
type Filters struct {
	IndicationsKey       []string
	ContraindicationsKey []string
	BodyParts            []string
}

// Retriever searches one named Qdrant collection for a tenant/branch.
type Retriever interface {
	Search(ctx context.Context, collection string, query string, filters Filters, limit int) ([]Hit, error)
}

// QdrantRetriever is the Retriever backed by a real Qdrant instance.
type QdrantRetriever struct {
	http    *http.Client
	baseURL string
	embed   *embed.Client
}

// Config configures a QdrantRetriever.
type Config struct {
	BaseURL string
}

// New builds a QdrantRetriever over the shared pooled http.Client and an
// embeddings client.
func New(httpClient *http.Client, cfg Config, embedClient *embed.Client) *QdrantRetriever {
	return &QdrantRetriever{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		embed:   embedClient,
	}
}

type qdrantCondition struct {
	Key   string           `json:"key"`
	Match qdrantMatchClause `json:"match"`
}

type qdrantMatchClause struct {
	Any []string `json:"any"`
}

type qdrantFilter struct {
	Must []qdrantCondition `json:"must,omitempty"`
}

type qdrantQueryRequest struct {
	Query  []float32     `json:"query"`
	Using  string        `json:"using"`
	Filter *qdrantFilter `json:"filter,omitempty"`
	Limit  int           `json:"limit"`
	WithPayload bool     `json:"with_payload"`
}

type qdrantScoredPoint struct {
	Score   float32        `json:"score"`
	Payload map[string]any `json:"payload"`
}

type qdrantQueryResponse struct {
	Result struct {
		Points []qdrantScoredPoint `json:"points"`
	} `json:"result"`
}

// Search embeds query and runs a dense-vector similarity search against
// collection, narrowed by filters. An empty (zero-value) Filters field is
// omitted from the request rather than sent as an impossible empty-any
// match.
func (r *QdrantRetriever) Search(ctx context.Context, collection, query string, filters Filters, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 5
	}

	vectors, err := r.embed.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, nil
	}

	req := qdrantQueryRequest{
		Query:       vectors[0],
		Using:       denseVectorName,
		Limit:       limit,
		WithPayload: true,
		Filter:      buildFilter(filters),
	}

	points, err := r.query(ctx, collection, req)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(points))
	for _, p := range points {
		hits = append(hits, Hit{
			ProductID:              stringField(p.Payload, "product_id"),
			ProductName:            stringField(p.Payload, "product_name"),
			Duration:               stringField(p.Payload, "duration"),
			Price:                  formatPrice(p.Payload["price_min"], p.Payload["price_max"]),
			Description:            stringField(p.Payload, "description"),
			PreSessionInstructions: stringField(p.Payload, "pre_session_instructions"),
			Question:               stringField(p.Payload, "question"),
			Answer:                 stringField(p.Payload, "answer"),
			Score:                  p.Score,
		})
	}
	return hits, nil
}

func buildFilter(f Filters) *qdrantFilter {
	var must []qdrantCondition
	if len(f.IndicationsKey) > 0 {
		must = append(must, qdrantCondition{Key: "indications_key", Match: qdrantMatchClause{Any: f.IndicationsKey}})
	}
	if len(f.ContraindicationsKey) > 0 {
		must = append(must, qdrantCondition{Key: "contraindications_key", Match: qdrantMatchClause{Any: f.ContraindicationsKey}})
	}
	if len(f.BodyParts) > 0 {
		must = append(must, qdrantCondition{Key: "body_part", Match: qdrantMatchClause{Any: f.BodyParts}})
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrantFilter{Must: must}
}

func (r *QdrantRetriever) query(ctx context.Context, collection string, body qdrantQueryRequest) ([]qdrantScoredPoint, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshalling qdrant query: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/query", r.baseURL, collection)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("building qdrant request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling qdrant: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qdrant returned HTTP %d for collection %s", resp.StatusCode, collection)
	}

	var decoded qdrantQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding qdrant response: %w", err)
	}
	return decoded.Result.Points, nil
}

func stringField(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// formatPrice mirrors the source's price normalization: a single value
// when min == max, a range when both differ, an open-ended phrase when
// only one bound is present.
func formatPrice(min, max any) string {
	minF, minOK := toFloat(min)
	maxF, maxOK := toFloat(max)

	switch {
	case minOK && maxOK && minF == maxF:
		return fmt.Sprintf("%s руб.", trimFloat(minF))
	case minOK && maxOK:
		return fmt.Sprintf("%s - %s руб.", trimFloat(minF), trimFloat(maxF))
	case minOK:
		return fmt.Sprintf("от %s руб.", trimFloat(minF))
	case maxOK:
		return fmt.Sprintf("до %s руб.", trimFloat(maxF))
	default:
		return ""
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
