package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pinclub/pin-engine/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// urlParamInt extracts a positive integer path parameter.
func urlParamInt(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return value, nil
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

// mapServiceErrorToHTTP translates service-layer sentinel errors into HTTP
// responses.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrLeagueNotFound),
		errors.Is(err, services.ErrSeasonNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrBracketMatchNotFound),
		errors.Is(err, services.ErrCloseResultNotFound):
		notFoundResponse(w, r)

	case errors.Is(err, services.ErrMatchAlreadyValidated),
		errors.Is(err, services.ErrSeasonAlreadyClosed),
		errors.Is(err, services.ErrBracketMatchFinished),
		errors.Is(err, services.ErrBracketMatchBye),
		errors.Is(err, services.ErrTournamentInvalidStatus),
		errors.Is(err, services.ErrEmailConflict):
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrInvalidParticipants),
		errors.Is(err, services.ErrInvalidWinner),
		errors.Is(err, services.ErrLeagueInactive),
		errors.Is(err, services.ErrSeasonNotActive),
		errors.Is(err, services.ErrTournamentNoParticipants),
		errors.Is(err, services.ErrBracketMatchNotReady),
		errors.Is(err, services.ErrAuthInvalidInput):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrInvalidConfirmer):
		forbiddenResponse(w, r, err.Error())

	case errors.Is(err, services.ErrAuthInvalidCredentials):
		unauthorizedResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
