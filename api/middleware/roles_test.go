package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type stubResolver struct {
	contact *models.Contact
	err     error
}

func (s stubResolver) Resolve(context.Context, int64) (*models.Contact, error) {
	return s.contact, s.err
}

func TestRequireContactType(t *testing.T) {
	buyer := &models.Contact{ID: 3, UserID: 1, Type: enums.ContactTypeBuyer}
	shop := &models.Contact{ID: 4, UserID: 1, Type: enums.ContactTypeShop}

	cases := []struct {
		name     string
		anon     bool
		resolver stubResolver
		status   int
		message  string
	}{
		{name: "anonymous", anon: true, resolver: stubResolver{contact: buyer}, status: http.StatusUnauthorized},
		{name: "no contact", resolver: stubResolver{err: pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")}, status: http.StatusForbidden, message: "contact required"},
		{name: "wrong type", resolver: stubResolver{contact: shop}, status: http.StatusForbidden, message: "only buyers can perform this action"},
		{name: "unknown type", resolver: stubResolver{contact: &models.Contact{Type: enums.ContactType("courier")}}, status: http.StatusForbidden, message: "contact type not recognized"},
		{name: "allowed", resolver: stubResolver{contact: buyer}, status: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen *models.Contact
			handler := RequireContactType(tc.resolver, nil, enums.ContactTypeBuyer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = ContactFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			ctx := context.Background()
			if !tc.anon {
				ctx = WithUserID(ctx, 1)
			}
			req := httptest.NewRequest(http.MethodPut, "/basket/", nil).WithContext(ctx)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, buyer, seen)
				return
			}
			assert.Nil(t, seen)
			if tc.message != "" {
				var body types.ErrorEnvelope
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tc.message, body.Error.Message)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/orders/1/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	ctx := WithAdmin(WithUserID(context.Background(), 1), true)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/orders/1/", nil).WithContext(ctx))
	assert.Equal(t, http.StatusOK, rec.Code)
}
