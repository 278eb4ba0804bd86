package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/ctxutil"
	"github.com/Spok95/siakad/internal/logging"
	"github.com/Spok95/siakad/internal/metrics"
	"github.com/Spok95/siakad/internal/observability"
)

type errorBody struct {
	Detail string              `json:"detail"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// fail writes err as {"detail", "errors"}. Anything that is not a client error
// is logged, reported to Sentry and hidden behind a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		metrics.HandlerErrors.Inc()
		rid, _ := ctxutil.RequestID(r.Context())
		s.Log.Error("handler failed",
			zap.String("route", logging.RoutePattern(r)),
			zap.String("request_id", rid),
			zap.Error(err))
		observability.CaptureRequestErr(r, logging.RoutePattern(r), err)
		writeJSON(w, status, errorBody{Detail: "internal server error"})
		return
	}
	writeJSON(w, status, errorBody{Detail: apperr.DetailOf(err), Errors: apperr.FieldsOf(err)})
}

// deny picks 401 for an anonymous caller on a route that needs a login, 403 otherwise.
func deny(role access.Role, res access.Resource, act access.Action) error {
	if !access.IsAuthenticated(role) && access.RequiresAuth(res, act) {
		return apperr.Unauthenticated("Authentication credentials were not provided.")
	}
	return apperr.Permission("You do not have permission to perform this action.")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

const maxBody = 1 << 20

// decode reads a JSON body into dst and runs struct validation on it.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		var (
			te *json.UnmarshalTypeError
			ae *apperr.Error
		)
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Validation("request body is empty")
		case errors.As(err, &ae):
			return ae
		case errors.As(err, &te) && te.Field != "":
			return apperr.FieldValidation(te.Field, "Incorrect type. Expected "+te.Type.String()+".")
		}
		return apperr.Validation("malformed JSON: " + err.Error())
	}
	return validationErr(validate.Struct(dst))
}

func validationErr(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := apperr.Validation("invalid input")
	for _, fe := range ve {
		out.With(fieldPath(fe), messageFor(fe))
	}
	return out
}

// fieldPath is the json name of the failing field. Embedded request structs
// are flattened in the body, so their names are dropped too.
func fieldPath(fe validator.FieldError) string {
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return "Ensure this value is less than or equal to " + fe.Param() + "."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return "Ensure this value is greater than or equal to " + fe.Param() + "."
	case "len":
		return fmt.Sprintf("Ensure this field has exactly %s characters.", fe.Param())
	case "gte":
		return "Ensure this value is greater than or equal to " + fe.Param() + "."
	case "lte":
		return "Ensure this value is less than or equal to " + fe.Param() + "."
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	}
	return "Invalid value (" + fe.Tag() + ")."
}

// idParam reads a numeric path parameter. A non-numeric id cannot name a row.
func idParam(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, apperr.NotFound(name)
	}
	return v, nil
}

// queryID reads an optional numeric query parameter.
func queryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperr.FieldValidation(name, "A valid integer is required.")
	}
	return &v, nil
}
