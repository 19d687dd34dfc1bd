package web

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/pkg/errors"

	"kincore/pkg/kinerr"
	"kincore/pkg/log"
)

type webError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type webErrorResponse struct {
	Error *webError `json:"error,omitempty"`
}

type resultResponse struct {
	Result interface{} `json:"result"`
}

var statuses = map[kinerr.Code]int{
	kinerr.CodePassphrase:          http.StatusForbidden,
	kinerr.CodeInsufficientBalance: http.StatusUnprocessableEntity,
	kinerr.CodeOperationFailed:     http.StatusBadGateway,
	kinerr.CodeKeyStore:            http.StatusBadRequest,
	kinerr.CodeInvalidArgument:     http.StatusBadRequest,
}

// StatusOf returns the HTTP status rendered for err.
func StatusOf(err error) int {
	if status, ok := statuses[kinerr.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RenderError renders error in JSON format.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	log.AddFields(r.Context(), "error", err.Error()) // log the rendered error

	webErr := &webError{
		Code:    kinerr.CodeOf(err).String(),
		Message: err.Error(),
	}
	if respErr, ok := errors.Cause(err).(*kinerr.Error); ok {
		webErr.Message = respErr.Message
		if respErr.Internal != nil { // log the internal error
			log.AddFields(r.Context(), "internal", respErr.Internal.Error())
		}
	}

	render.Status(r, StatusOf(err))
	render.JSON(w, r, &webErrorResponse{Error: webErr})
}

func RenderResult(w http.ResponseWriter, r *http.Request, result interface{}) {
	render.JSON(w, r, &resultResponse{Result: result})
}
