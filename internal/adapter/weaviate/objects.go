package weaviate

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"shastra/internal/domain"
	"shastra/internal/port"
)

type object struct {
	Class      string         `json:"class"`
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
	Vector     []float32      `json:"vector"`
}

type batchRequest struct {
	Objects []object `json:"objects"`
}

type batchResult struct {
	ID     string `json:"id"`
	Result struct {
		Status string `json:"status"`
		Errors *struct {
			Error []struct {
				Message string `json:"message"`
			} `json:"error"`
		} `json:"errors"`
	} `json:"result"`
}

// objectID derives a stable ID from the passage identity and content, so
// re-ingesting the same passage replaces the stored object instead of
// duplicating it.
func objectID(p domain.Passage) string {
	sum := sha256.Sum256([]byte(p.Content))
	name := fmt.Sprintf("%s:%d:%x", p.Source, p.Page, sum[:8])
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// BatchInsert stores the items through the batch endpoint and returns how
// many the server accepted. If the batch endpoint itself fails, objects
// are stored one at a time.
func (c *Client) BatchInsert(ctx context.Context, items []port.IndexItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	objects := make([]object, 0, len(items))
	for _, item := range items {
		objects = append(objects, object{
			Class: c.class,
			ID:    objectID(item.Passage),
			Properties: map[string]any{
				"content":  item.Passage.Content,
				"source":   item.Passage.Source,
				"page":     item.Passage.Page,
				"category": item.Passage.Category,
			},
			Vector: item.Vector,
		})
	}

	status, body, err := c.do(ctx, http.MethodPost, "/v1/batch/objects", batchRequest{Objects: objects})
	if err != nil || status != http.StatusOK {
		return c.insertIndividually(ctx, objects)
	}

	var results []batchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return 0, fmt.Errorf("%w: failed to parse batch response (body: %s): %w", domain.ErrIndex, preview(body), err)
	}

	stored := 0
	var firstErr string
	for _, r := range results {
		if r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			if firstErr == "" {
				firstErr = r.Result.Errors.Error[0].Message
			}
			continue
		}
		stored++
	}
	if stored < len(objects) {
		return stored, fmt.Errorf("%w: batch stored %d of %d objects: %s", domain.ErrIndex, stored, len(objects), firstErr)
	}
	return stored, nil
}

func (c *Client) insertIndividually(ctx context.Context, objects []object) (int, error) {
	stored := 0
	var lastErr error
	for _, obj := range objects {
		status, body, err := c.do(ctx, http.MethodPost, "/v1/objects", obj)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: object insert: %w", domain.ErrIndex, err)
		case status == http.StatusOK:
			stored++
		case strings.Contains(string(body), "already exists"):
			// Deterministic IDs make re-inserts collide; the object is
			// already stored, which is what the caller wanted.
			stored++
		default:
			lastErr = fmt.Errorf("%w: object insert returned status %d: %s", domain.ErrIndex, status, preview(body))
		}
	}
	if stored < len(objects) && lastErr != nil {
		return stored, lastErr
	}
	return stored, nil
}
