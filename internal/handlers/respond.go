package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/vigilops/vigil-api/internal/models"
	"github.com/vigilops/vigil-api/internal/repository"
)

// validate is shared across handlers; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP status codes. Anything unclassified
// is a storage failure: logged in full, surfaced opaquely.
func writeError(logger zerolog.Logger, w http.ResponseWriter, err error) {
	var (
		validationErr  *models.ValidationError
		unknownField   *repository.UnknownFieldError
		validatorErrs  validator.ValidationErrors
	)
	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Msg, http.StatusBadRequest)
	case errors.As(err, &validatorErrs):
		http.Error(w, validatorErrs.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrCommentForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, repository.ErrAlertNotFound),
		errors.Is(err, repository.ErrCommentNotFound),
		errors.Is(err, repository.ErrFieldNotFound),
		errors.Is(err, repository.ErrTagNotFound),
		errors.Is(err, repository.ErrCaseNotFound),
		errors.Is(err, repository.ErrAssociationNotFound),
		errors.Is(err, repository.ErrFieldRowNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &unknownField):
		http.Error(w, unknownField.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, repository.ErrFieldRowExists):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		logger.Error().Err(err).Msg("request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
