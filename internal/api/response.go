package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"infinite-experiment/clanhall/internal/auth"
	"infinite-experiment/clanhall/internal/common"
	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/logging"
	"infinite-experiment/clanhall/internal/services"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var errEmptyBody = errors.New("request body is required")

// decodeRequest reads a JSON body into dst and validates its tags.
func decodeRequest(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return validate.Struct(dst)
}

// respondBadRequest reports a decode or validation failure.
func respondBadRequest(w http.ResponseWriter, initTime time.Time, err error) {
	msg := constants.MsgInvalidRequestBody
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		msg = "Invalid field " + verrs[0].Field() + ": failed " + verrs[0].Tag()
	case errors.Is(err, errEmptyBody):
		msg = constants.MsgEmptyRequestBody
	}
	common.RespondError(w, initTime, nil, msg, http.StatusBadRequest)
}

// statusForKind maps an operation error kind to its HTTP status.
func statusForKind(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindInvalidInput:
		return http.StatusBadRequest
	case services.KindUnconfigured:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError answers with the operation's own message, or a generic
// one for internal faults.
func respondServiceError(w http.ResponseWriter, r *http.Request, initTime time.Time, err error) {
	kind := services.KindOf(err)
	status := statusForKind(kind)
	if kind == services.KindInternal {
		logging.Error("Request failed",
			"request_id", auth.GetRequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		common.RespondError(w, initTime, nil, constants.MsgInternalServerError, status)
		return
	}
	common.RespondError(w, initTime, err, "", status)
}

// actorFrom builds the operation actor from the request claims.
func actorFrom(r *http.Request) (services.Actor, bool) {
	claims := auth.GetUserClaims(r.Context())
	if claims == nil {
		return services.Actor{}, false
	}
	return services.Actor{
		GuildID: claims.GuildID(),
		UserID:  claims.UserID(),
		IsAdmin: claims.IsAdmin(),
	}, true
}
