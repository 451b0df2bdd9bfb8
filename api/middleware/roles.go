package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// ContactResolver loads the contact attached to a user.
type ContactResolver interface {
	Resolve(ctx context.Context, userID int64) (*models.Contact, error)
}

// RequireAdmin admits only tokens carrying the admin system role.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdminFromContext(r.Context()) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireContactType loads the caller's contact and admits the request only
// when its type is one of allowed. The loaded contact is placed on the
// context for handlers.
func RequireContactType(resolver ContactResolver, logg *logger.Logger, allowed ...enums.ContactType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if resolver == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact resolver unavailable"))
				return
			}
			userID, ok := UserIDFromContext(ctx)
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}

			contact, err := resolver.Resolve(ctx, userID)
			if err != nil {
				if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
					err = pkgerrors.New(pkgerrors.CodeForbidden, "contact required")
				}
				responses.WriteError(ctx, logg, w, err)
				return
			}

			if err := checkContactType(contact.Type, allowed); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ctx = WithContact(ctx, contact)
			if logg != nil {
				ctx = logg.WithContactType(ctx, string(contact.Type))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var errUnknownContactType = errors.New("unknown contact type")

func checkContactType(actual enums.ContactType, allowed []enums.ContactType) error {
	switch actual {
	case enums.ContactTypeShop, enums.ContactTypeBuyer:
	default:
		return pkgerrors.Wrap(pkgerrors.CodeForbidden, errUnknownContactType, "contact type not recognized")
	}
	for _, want := range allowed {
		if actual == want {
			return nil
		}
	}
	switch actual {
	case enums.ContactTypeShop:
		return pkgerrors.New(pkgerrors.CodeForbidden, "only buyers can perform this action")
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "only shops can perform this action")
	}
}
