package backend

import (
	"context"
	"errors"
	"net/http"

	"pocketctl/cli/internal/auth"
	perrors "pocketctl/cli/internal/errors"
)

// CreateRecord calls POST /api/collections/{collection}/records.
func (h *HTTP) CreateRecord(ctx context.Context, collection string, body map[string]any) (*auth.Record, error) {
	var rec auth.Record
	if err := h.doJSON(ctx, http.MethodPost, collectionPath(collection, "records"), "", body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// AuthWithPassword calls POST /api/collections/{collection}/auth-with-password
// with { identity, password }. identity is usually the email address.
func (h *HTTP) AuthWithPassword(ctx context.Context, collection, identity, password string) (*AuthResponse, error) {
	body := map[string]string{
		"identity": identity,
		"password": password,
	}
	var raw map[string]any
	if err := h.doJSON(ctx, http.MethodPost, collectionPath(collection, "auth-with-password"), "", body, &raw); err != nil {
		// The backend answers bad credentials with a bare 400.
		var e *perrors.E
		if errors.As(err, &e) && e.Kind == perrors.KindValidation && len(e.Data) == 0 {
			e.Kind = perrors.KindUnauthorized
		}
		return nil, err
	}
	return parseAuthResponse(raw)
}

// AuthRefresh calls POST /api/collections/{collection}/auth-refresh with the
// current token. The backend answers with a new token and the fresh record;
// an expired or revoked token yields errors.KindUnauthorized.
func (h *HTTP) AuthRefresh(ctx context.Context, collection, token string) (*AuthResponse, error) {
	var raw map[string]any
	if err := h.doJSON(ctx, http.MethodPost, collectionPath(collection, "auth-refresh"), token, nil, &raw); err != nil {
		return nil, err
	}
	return parseAuthResponse(raw)
}
