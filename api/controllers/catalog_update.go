package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/catalog/importer"
	"github.com/angelmondragon/storefront-backend/internal/catalog/source"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// CatalogImporter ingests one price list document for the caller's shop.
type CatalogImporter interface {
	Import(ctx context.Context, userID int64, fileName string, body []byte) (*importer.Result, error)
}

// CatalogUpdate handles POST /update/{file_name}. A non-empty body is parsed
// as the document itself; otherwise file_name is fetched from the
// configured catalog source.
func CatalogUpdate(svc CatalogImporter, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog importer unavailable"))
			return
		}
		userID, err := CurrentUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fileName := chi.URLParam(r, "file_name")
		if fileName == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required"))
			return
		}

		var body []byte
		if r.Body != nil {
			body, err = source.ReadLimited(r.Body, maxBytes)
			if errors.Is(err, source.ErrTooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "catalog document too large"))
				return
			}
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
		}

		result, err := svc.Import(r.Context(), userID, fileName, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, "catalog updated", result)
	}
}
