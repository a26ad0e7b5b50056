package transport

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"german-butchery/internal/cart"
	"german-butchery/internal/middleware"
	"german-butchery/internal/repository"
	"german-butchery/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Middleware is the chi middleware signature
type Middleware = func(http.Handler) http.Handler

// Guards are the middleware chains placed in front of protected route groups.
// Empty chains leave the routes open.
type Guards struct {
	Staff    []Middleware // bearer token with role admin or staff
	Admin    []Middleware // bearer token with role admin
	Checkout []Middleware // order creation, usually rate limited
}

// NewGuards builds the standard chains from the JWT secret and an optional
// checkout limiter
func NewGuards(jwtSecret string, checkoutLimiter Middleware, logger *zap.Logger) Guards {
	auth := middleware.AuthMiddleware(jwtSecret, logger)

	g := Guards{
		Staff: []Middleware{auth, middleware.RequireStaff(logger)},
		Admin: []Middleware{auth, middleware.RequireAdmin(logger)},
	}
	if checkoutLimiter != nil {
		g.Checkout = []Middleware{checkoutLimiter}
	}
	return g
}

var notFoundErrors = []error{
	repository.ErrProductNotFound,
	repository.ErrCategoryNotFound,
	repository.ErrDeliveryZoneNotFound,
	repository.ErrOrderNotFound,
	repository.ErrSettingNotFound,
	repository.ErrUserNotFound,
	cart.ErrItemNotFound,
}

var conflictErrors = []error{
	repository.ErrSlugAlreadyExists,
	repository.ErrSKUAlreadyExists,
	repository.ErrUserAlreadyExists,
	service.ErrInvalidStatusTransition,
}

// respondServiceError maps service and repository errors onto status codes.
// Unmapped errors are logged and reported as 500 with the given message.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, message string) {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			middleware.RespondWithError(w, http.StatusNotFound, target.Error())
			return
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			middleware.RespondWithError(w, http.StatusConflict, target.Error())
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		middleware.RespondWithError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": "))
	case errors.Is(err, repository.ErrInvalidReference):
		middleware.RespondWithError(w, http.StatusBadRequest, repository.ErrInvalidReference.Error())
	case errors.Is(err, repository.ErrCheckViolation):
		middleware.RespondWithError(w, http.StatusBadRequest, repository.ErrCheckViolation.Error())
	case errors.Is(err, cart.ErrInvalidQuantity):
		middleware.RespondWithError(w, http.StatusBadRequest, cart.ErrInvalidQuantity.Error())
	default:
		logger.Error(message, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, message)
	}
}

// uuidParam parses a UUID path parameter, writing a 400 when it is malformed
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an integer query parameter. Missing or malformed values
// yield zero so pagination defaults apply.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}
