package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/whispervault/whispervault/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeMappedError maps the sentinel wrapped in err to a status code. The
// overrides let a handler pick route-specific messages for specific named
// errors before the generic mapping applies.
func writeMappedError(w http.ResponseWriter, err error, overrides ...errOverride) {
	for _, o := range overrides {
		if errors.Is(err, o.target) {
			writeError(w, o.status, o.msg)
			return
		}
	}
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrorForbidden):
		writeError(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

type errOverride struct {
	target error
	status int
	msg    string
}

func override(target error, status int, msg string) errOverride {
	return errOverride{target: target, status: status, msg: msg}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.ErrorValidation
	}
	return nil
}
