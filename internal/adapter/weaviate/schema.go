package weaviate

import (
	"context"
	"fmt"
	"net/http"

	"shastra/internal/domain"
)

type classDefinition struct {
	Class      string     `json:"class"`
	Vectorizer string     `json:"vectorizer"`
	Properties []property `json:"properties"`
}

type property struct {
	Name     string   `json:"name"`
	DataType []string `json:"dataType"`
}

// SchemaExists reports whether the class is defined on the server.
func (c *Client) SchemaExists(ctx context.Context) (bool, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/v1/schema/"+c.class, nil)
	if err != nil {
		return false, fmt.Errorf("%w: schema request: %w", domain.ErrIndex, err)
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: schema returned status %d: %s", domain.ErrIndex, status, preview(body))
	}
}

// EnsureSchema creates the class if it does not exist. Vectors are
// supplied by the caller at insert time, so the vectorizer is "none".
func (c *Client) EnsureSchema(ctx context.Context) error {
	exists, err := c.SchemaExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	def := classDefinition{
		Class:      c.class,
		Vectorizer: "none",
		Properties: []property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"string"}},
			{Name: "page", DataType: []string{"int"}},
			{Name: "category", DataType: []string{"string"}},
		},
	}

	status, body, err := c.do(ctx, http.MethodPost, "/v1/schema", def)
	if err != nil {
		return fmt.Errorf("%w: create schema: %w", domain.ErrIndex, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: create schema returned status %d: %s", domain.ErrIndex, status, preview(body))
	}
	return nil
}

// DropSchema deletes the class and all objects stored under it. Dropping
// an absent class is not an error.
func (c *Client) DropSchema(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodDelete, "/v1/schema/"+c.class, nil)
	if err != nil {
		return fmt.Errorf("%w: drop schema: %w", domain.ErrIndex, err)
	}
	if status != http.StatusOK && status != http.StatusNotFound {
		return fmt.Errorf("%w: drop schema returned status %d: %s", domain.ErrIndex, status, preview(body))
	}
	return nil
}
