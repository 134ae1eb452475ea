package weaviate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"shastra/internal/domain"
)

type graphqlRequest struct {
	Query string `json:"query"`
}

type graphqlResponse struct {
	Data   graphqlData    `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type graphqlData struct {
	Get map[string][]hit `json:"Get"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type hit struct {
	Content    string         `json:"content"`
	Source     string         `json:"source"`
	Page       int            `json:"page"`
	Category   string         `json:"category"`
	Additional *hitAdditional `json:"_additional"`
}

type hitAdditional struct {
	Distance  *float64 `json:"distance"`
	Certainty *float64 `json:"certainty"`
}

func (h hit) passage() domain.Passage {
	return domain.Passage{
		Content:  h.Content,
		Source:   h.Source,
		Page:     h.Page,
		Category: h.Category,
	}
}

// NearVector returns the limit closest objects to the vector, best first,
// with whichever of distance and certainty the server reports.
func (c *Client) NearVector(ctx context.Context, vector []float32, limit int) ([]domain.Candidate, error) {
	vec, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal vector: %w", domain.ErrIndex, err)
	}
	query := fmt.Sprintf(
		"{ Get { %s(nearVector: {vector: %s}, limit: %d) { content source page category _additional { distance certainty } } } }",
		c.class, vec, limit,
	)

	hits, err := c.runGet(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(hits))
	for _, h := range hits {
		cand := domain.Candidate{Passage: h.passage()}
		if h.Additional != nil {
			cand.Distance = h.Additional.Distance
			cand.Certainty = h.Additional.Certainty
		}
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

// Keyword runs a BM25 search for the raw query text. Hits carry no
// similarity metadata.
func (c *Client) Keyword(ctx context.Context, queryText string, limit int) ([]domain.Passage, error) {
	query := fmt.Sprintf(
		"{ Get { %s(bm25: {query: %s}, limit: %d) { content source page category } } }",
		c.class, graphqlString(queryText), limit,
	)

	hits, err := c.runGet(ctx, query)
	if err != nil {
		return nil, err
	}

	passages := make([]domain.Passage, 0, len(hits))
	for _, h := range hits {
		passages = append(passages, h.passage())
	}
	return passages, nil
}

// Sample returns up to limit stored passages, in server order.
func (c *Client) Sample(ctx context.Context, limit int) ([]domain.Passage, error) {
	query := fmt.Sprintf(
		"{ Get { %s(limit: %d) { content source page category } } }",
		c.class, limit,
	)

	hits, err := c.runGet(ctx, query)
	if err != nil {
		return nil, err
	}

	passages := make([]domain.Passage, 0, len(hits))
	for _, h := range hits {
		passages = append(passages, h.passage())
	}
	return passages, nil
}

// Count returns the number of objects in the class.
func (c *Client) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf("{ Aggregate { %s { meta { count } } } }", c.class)

	status, body, err := c.do(ctx, http.MethodPost, "/v1/graphql", graphqlRequest{Query: query})
	if err != nil {
		return 0, fmt.Errorf("%w: aggregate request: %w", domain.ErrIndex, err)
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("%w: aggregate returned status %d: %s", domain.ErrIndex, status, preview(body))
	}

	var resp aggregateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("%w: failed to parse aggregate response (body: %s): %w", domain.ErrIndex, preview(body), err)
	}
	if len(resp.Errors) > 0 {
		return 0, fmt.Errorf("%w: aggregate error: %s", domain.ErrIndex, resp.Errors[0].Message)
	}

	groups, ok := resp.Data.Aggregate[c.class]
	if !ok || len(groups) == 0 {
		return 0, fmt.Errorf("%w: malformed aggregate response: class %s missing", domain.ErrIndex, c.class)
	}
	return groups[0].Meta.Count, nil
}

type aggregateResponse struct {
	Data struct {
		Aggregate map[string][]aggregateGroup `json:"Aggregate"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type aggregateGroup struct {
	Meta struct {
		Count int `json:"count"`
	} `json:"meta"`
}

// runGet executes a Get query and unwraps the hits for the client's
// class. A response without the class key is malformed; a present key
// with an empty list is a legitimate empty result.
func (c *Client) runGet(ctx context.Context, query string) ([]hit, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/v1/graphql", graphqlRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("%w: graphql request: %w", domain.ErrIndex, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: graphql returned status %d: %s", domain.ErrIndex, status, preview(body))
	}

	var resp graphqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse graphql response (body: %s): %w", domain.ErrIndex, preview(body), err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%w: graphql error: %s", domain.ErrIndex, resp.Errors[0].Message)
	}

	hits, ok := resp.Data.Get[c.class]
	if !ok {
		return nil, fmt.Errorf("%w: malformed graphql response: class %s missing", domain.ErrIndex, c.class)
	}
	return hits, nil
}

// graphqlString renders s as a quoted GraphQL string literal.
func graphqlString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
