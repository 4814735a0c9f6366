package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/internal/ctxstore"
	"github.com/jakechorley/hostelhub/pkg/core/model"
)

const (
	_maxBodyBytes = 1 << 20

	genericErrorMessage = "something went wrong, please try again"
)

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(append(body, '\n'))
	return err
}

// decodeJSON reads a single JSON object from the body, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, _maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxErr):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxErr.Offset)
		case errors.As(err, &typeErr):
			return fmt.Errorf("body contains incorrect JSON type for field %q", typeErr.Field)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("body contains unknown field %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		case errors.As(err, &maxErr):
			return fmt.Errorf("body must not be larger than %d bytes", maxErr.Limit)
		default:
			return err
		}
	}

	if dec.More() {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	tid, _ := ctxstore.From[string](r.Context(), _traceIDKey)
	return s.logger.With(zap.String(_traceIDKey.String(), tid))
}

func (s *Server) errorMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := writeJSON(w, status, envelope{"error": message}); err != nil {
		s.requestLogger(r).Error("Failed to write error response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// serverError logs err and answers with a generic message
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.requestLogger(r).Error("Request failed",
		zap.String("method", r.Method),
		zap.String("url", r.URL.String()),
		zap.Error(err))
	s.errorMessage(w, r, http.StatusInternalServerError, genericErrorMessage)
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.errorMessage(w, r, http.StatusBadRequest, err.Error())
}

func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	s.errorMessage(w, r, http.StatusUnauthorized, "missing or invalid bearer token")
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	s.errorMessage(w, r, http.StatusForbidden, "you do not have permission for this action")
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.errorMessage(w, r, http.StatusNotFound, "the requested resource could not be found")
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.errorMessage(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("the %s method is not supported for this resource", r.Method))
}

// serviceError maps a service error onto a status. Anything unrecognised, including
// transient write failures, gets the generic message.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		s.errorMessage(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrForbidden):
		s.errorMessage(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrNotFound):
		s.errorMessage(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrConflict), errors.Is(err, model.ErrClosed):
		s.errorMessage(w, r, http.StatusConflict, err.Error())
	default:
		s.serverError(w, r, err)
	}
}

// respond writes data, falling back to a server error if encoding fails
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		s.serverError(w, r, err)
	}
}
