package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/Sternrassler/swecha-admin/pkg/entity"
	"github.com/google/uuid"
)

const categoriesPath = "/categories/"

// ListCategories fetches every category. The endpoint is not paginated.
func (c *Client) ListCategories(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	if err := c.getList(ctx, categoriesPath, nil, "categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory fetches a single category.
func (c *Client) GetCategory(ctx context.Context, id string) (*entity.Category, error) {
	var category entity.Category
	if err := c.getJSON(ctx, categoriesPath+url.PathEscape(id), nil, "categories", &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory creates a category. The ID and timestamps are generated
// client-side when left empty.
func (c *Client) CreateCategory(ctx context.Context, req entity.CategoryCreate) (Result, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	stamp := c.now().UTC().Format(time.RFC3339)
	if req.CreatedAt == "" {
		req.CreatedAt = stamp
	}
	if req.UpdatedAt == "" {
		req.UpdatedAt = stamp
	}

	status, _, err := c.sendJSON(ctx, http.MethodPost, categoriesPath, req, "categories", "Unknown error occurred.",
		http.StatusCreated)
	if err != nil {
		return Result{StatusCode: status}, err
	}
	return Result{Message: "Category created successfully.", StatusCode: status}, nil
}

// UpdateCategory replaces the editable fields of a category.
func (c *Client) UpdateCategory(ctx context.Context, id string, req entity.CategoryUpdate) (Result, error) {
	status, _, err := c.sendJSON(ctx, http.MethodPut, categoriesPath+url.PathEscape(id), req, "categories", "Unknown error occurred.",
		http.StatusOK)
	if err != nil {
		return Result{StatusCode: status}, err
	}
	return Result{Message: "Category updated successfully.", StatusCode: status}, nil
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) (Result, error) {
	status, _, err := c.sendJSON(ctx, http.MethodDelete, categoriesPath+url.PathEscape(id), nil, "categories", "Unknown error occurred.",
		http.StatusOK, http.StatusNoContent)
	if err != nil {
		return Result{StatusCode: status}, err
	}
	return Result{Message: "Category deleted successfully.", StatusCode: status}, nil
}
