package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"pulse-backend/internal/auth"
	"pulse-backend/internal/middleware"
	"pulse-backend/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

var errBadRequest = errors.New("invalid request body")

var validate = newValidator()

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// errorStatus maps service errors to HTTP status codes
var errorStatus = []struct {
	status int
	errs   []error
}{
	{http.StatusBadRequest, []error{
		errBadRequest, services.ErrInvalidInput, services.ErrReasonRequired, auth.ErrWeakPassword,
	}},
	{http.StatusUnauthorized, []error{
		auth.ErrInvalidCredentials, auth.ErrInvalidToken, auth.ErrMissingToken,
	}},
	{http.StatusForbidden, []error{
		services.ErrForbidden, services.ErrAccountSuspended, services.ErrNotMember,
		services.ErrNotHost, services.ErrNotOwner,
	}},
	{http.StatusNotFound, []error{
		services.ErrUserNotFound, services.ErrPhotoNotFound, services.ErrRoomNotFound,
		services.ErrTeamNotFound, services.ErrContactNotFound, services.ErrVerificationNotFound,
	}},
	{http.StatusConflict, []error{
		services.ErrEmailTaken, services.ErrPhotoLimit, services.ErrUploadMissing,
		services.ErrPhotoNotPending, services.ErrAlreadyReviewed, services.ErrRoomFull,
		services.ErrRoomNotWaiting, services.ErrRoomNotPlaying, services.ErrNotEnoughPlayers,
		services.ErrAlreadyMember, services.ErrTeamLocked, services.ErrTeamFull,
		services.ErrCannotKickSelf, services.ErrSelfContact, services.ErrContactExists,
		services.ErrNotPendingInvite, services.ErrSelfReport, services.ErrDuplicateReport,
	}},
	{http.StatusUnsupportedMediaType, []error{services.ErrUnsupportedMedia}},
	{http.StatusUnprocessableEntity, []error{services.ErrUnderage, services.ErrContactDetails}},
}

// statusFor returns the HTTP status for err; unknown errors are 500
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest
	}
	for _, group := range errorStatus {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return http.StatusInternalServerError
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondJSON sends v as a JSON body
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps err to a status and replies. Internal errors are logged
// and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("user_id", middleware.GetUserID(r.Context())).
			Str("path", r.URL.Path).
			Msg(msg)
		respondError(w, "Internal server error", status)
		return
	}
	respondError(w, validationMessage(err), status)
}

// decodeAndValidate reads a JSON body into dst and checks its validate tags
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errBadRequest
	}
	return validate.Struct(dst)
}

// validationMessage turns validator output into a short client message
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// pagination reads limit and offset query parameters
func pagination(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", 50)
	offset = queryInt(r, "offset", 0)
	return limit, offset
}

func queryInt(r *http.Request, name string, def int) int {
	if s := r.URL.Query().Get(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}
