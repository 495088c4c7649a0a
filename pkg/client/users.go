package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Sternrassler/swecha-admin/pkg/entity"
)

const usersPath = "/users/"

// ListUsersPage fetches one page of users.
func (c *Client) ListUsersPage(ctx context.Context, skip, limit int) ([]entity.User, error) {
	var users []entity.User
	if err := c.getList(ctx, usersPath, pageQuery(skip, limit), "users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches a single user. A missing user yields an error matching ErrNotFound.
func (c *Client) GetUser(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	if err := c.getJSON(ctx, usersPath+url.PathEscape(id), nil, "users", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser registers a new user. Consent is always recorded as given.
func (c *Client) CreateUser(ctx context.Context, req entity.UserCreate) (Result, error) {
	req.HasGivenConsent = true
	status, _, err := c.sendJSON(ctx, http.MethodPost, usersPath, req, "users", "Error creating user.",
		http.StatusCreated)
	if err != nil {
		return Result{StatusCode: status}, err
	}
	return Result{Message: "User created successfully.", StatusCode: status}, nil
}

// UpdateUser replaces the editable fields of a user.
func (c *Client) UpdateUser(ctx context.Context, id string, req entity.UserUpdate) (Result, error) {
	status, _, err := c.sendJSON(ctx, http.MethodPut, usersPath+url.PathEscape(id), req, "users", "Error updating user.",
		http.StatusOK)
	if err != nil {
		return Result{StatusCode: status}, err
	}
	return Result{Message: "User updated successfully.", StatusCode: status}, nil
}

// DeleteUser removes a user. The backend's confirmation message is passed
// through when it sends one.
func (c *Client) DeleteUser(ctx context.Context, id string) (Result, error) {
	status, body, err := c.sendJSON(ctx, http.MethodDelete, usersPath+url.PathEscape(id), nil, "users", "Error deleting user.",
		http.StatusOK, http.StatusNoContent)
	if err != nil {
		return Result{StatusCode: status}, err
	}
	return Result{Message: messageOr(body, "User deleted successfully."), StatusCode: status}, nil
}
