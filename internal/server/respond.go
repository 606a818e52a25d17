package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/matzehuels/panecraft/pkg/design"
	perrors "github.com/matzehuels/panecraft/pkg/errors"
	"github.com/matzehuels/panecraft/pkg/project"
	"github.com/matzehuels/panecraft/pkg/session"
)

// maxBodyBytes bounds request bodies. A full design with long paragraphs fits
// comfortably.
const maxBodyBytes = 4 << 20

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    perrors.Code `json:"code"`
	Message string       `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	_, _ = w.Write(data)
}

// writeError answers with the status and code err maps to. Internal errors
// are logged and their details withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apiError(err)
	status := perrors.HTTPStatus(e.Code)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: e.Code, Message: e.Message}})
}

// apiError converts any error into a structured one.
func apiError(err error) *perrors.Error {
	var e *perrors.Error
	if errors.As(err, &e) {
		return perrors.New(e.Code, "%s", e.Message)
	}

	code := perrors.ErrCodeInternal
	switch {
	case errors.Is(err, design.ErrNodeNotFound):
		code = perrors.ErrCodeNodeNotFound
	case errors.Is(err, design.ErrInvalidConstraint), errors.Is(err, design.ErrNotPercentage):
		code = perrors.ErrCodeInvalidConstraint
	case errors.Is(err, design.ErrRootImmutable), errors.Is(err, design.ErrNotLayout),
		errors.Is(err, design.ErrCycle), errors.Is(err, design.ErrIndexOutOfRange),
		errors.Is(err, design.ErrInvalidProps), errors.Is(err, project.ErrBadCursor):
		code = perrors.ErrCodeInvalidInput
	case errors.Is(err, design.ErrInvalidSnapshot), errors.Is(err, design.ErrCorruptLayout):
		code = perrors.ErrCodeInvalidDesign
	case errors.Is(err, design.ErrNoRoom), errors.Is(err, design.ErrEditorClosed):
		code = perrors.ErrCodeConflict
	case errors.Is(err, session.ErrNotFound):
		code = perrors.ErrCodeUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		code = perrors.ErrCodeTimeout
	}
	if code == perrors.ErrCodeInternal {
		return perrors.New(code, "internal error")
	}
	return perrors.New(code, "%s", err.Error())
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

// bearer returns the token from an "Authorization: Bearer <token>" header.
func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
