// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-gssname.
//
// go-gssname is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jeremyhahn/go-gssname/pkg/mech"
	"github.com/jeremyhahn/go-gssname/pkg/status"
)

// Common errors
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrMissingName      = errors.New("missing name")
	ErrMissingOtherID   = errors.New("missing other_id")
	ErrInvalidNameType  = errors.New("invalid name_type OID")
	ErrInvalidMechanism = errors.New("invalid mechanism OID")
	ErrNameNotFound     = errors.New("name not found")
	ErrInternalError    = errors.New("internal server error")
	ErrUnauthorized     = errors.New("unauthorized")
)

// writeError writes an error response to the client.
func writeError(w http.ResponseWriter, err error, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error: err.Error(),
		Code:  statusCode,
	}

	// Name operation failures carry both status codes and the decoded
	// message chains for each.
	var opErr *status.Error
	if errors.As(err, &opErr) {
		resp.Major = opErr.Major
		resp.Minor = opErr.Minor
		resp.Details = append(resp.Details, opErr.MajorMessages...)
		resp.Details = append(resp.Details, opErr.MinorMessages...)
	}

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		log.Printf("Failed to encode error response: %v", encErr)
	}
}

// writeErrorWithMessage writes an error response with a custom message.
func writeErrorWithMessage(w http.ResponseWriter, err error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:   err.Error(),
		Message: message,
		Code:    statusCode,
	}

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		log.Printf("Failed to encode error response: %v", encErr)
	}
}

// mapErrorToStatusCode maps errors to HTTP status codes.
func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNameNotFound),
		errors.Is(err, mech.ErrProviderNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrMissingName),
		errors.Is(err, ErrMissingOtherID),
		errors.Is(err, ErrInvalidNameType),
		errors.Is(err, ErrInvalidMechanism),
		errors.Is(err, status.ErrBadName),
		errors.Is(err, status.ErrBadNameType),
		errors.Is(err, status.ErrBadMech):
		return http.StatusBadRequest
	case errors.Is(err, status.ErrMechanismNameRequired):
		return http.StatusConflict
	case errors.Is(err, status.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorClass maps a failed operation error to its metrics failure class.
func errorClass(err error) string {
	switch {
	case errors.Is(err, status.ErrBadName):
		return "bad_name"
	case errors.Is(err, status.ErrBadNameType):
		return "bad_name_type"
	case errors.Is(err, status.ErrBadMech):
		return "bad_mech"
	case errors.Is(err, status.ErrMechanismNameRequired):
		return "name_not_mn"
	case errors.Is(err, status.ErrUnavailable):
		return "unavailable"
	default:
		return "provider"
	}
}

// handleError maps the error to a status code and writes the error response.
func handleError(w http.ResponseWriter, err error) {
	writeError(w, err, mapErrorToStatusCode(err))
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}
