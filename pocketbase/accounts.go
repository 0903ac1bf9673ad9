package pocketbase

import (
	"context"
	"strings"
)

// AccountsService manages user-like records in the client's collection.
type AccountsService struct{ r Requester }

// Create posts a new account. passwordConfirm mirrors Password.
func (s AccountsService) Create(ctx context.Context, in AccountInput) Result {
	return createRecord(ctx, s.r, createAccountRequest{
		Username:        in.Username,
		Email:           in.Email,
		Password:        in.Password,
		PasswordConfirm: in.Password,
		Name:            optional(in.Name),
		Avatar:          optional(in.Avatar),
		Description:     optional(in.Description),
	})
}

// Update patches an account. An empty id is rejected before any request.
func (s AccountsService) Update(ctx context.Context, id string, data any) (Result, error) {
	if strings.TrimSpace(id) == "" {
		return Result{}, &ValidationError{Field: "id", Reason: "account ID must be provided for updating an account"}
	}
	return updateRecord(ctx, s.r, id, data), nil
}

// Delete removes an account. An empty id is rejected before any request.
func (s AccountsService) Delete(ctx context.Context, id string) (Result, error) {
	if strings.TrimSpace(id) == "" {
		return Result{}, &ValidationError{Field: "id", Reason: "account ID must be provided for deleting an account"}
	}
	return deleteRecord(ctx, s.r, id), nil
}
