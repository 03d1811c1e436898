package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/me/schedsim/pkg/model"
)

// Response helpers. Every endpoint goes through respondJSON so runs, traces,
// and errors all arrive in the same envelope.

func respondOK(w http.ResponseWriter, reqID string, data any) {
	respondJSON(w, http.StatusOK, reqID, data, nil, nil)
}

// respondCreated is used by run submission, where the caller just paid for a
// full simulation and gets the finished run back.
func respondCreated(w http.ResponseWriter, reqID string, data any) {
	respondJSON(w, http.StatusCreated, reqID, data, nil, nil)
}

// respondList attaches pagination, used by the run and trace listings.
func respondList(w http.ResponseWriter, reqID string, data any, pg *model.Pagination) {
	respondJSON(w, http.StatusOK, reqID, data, pg, nil)
}

func respondError(w http.ResponseWriter, reqID string, status int, apiErr *model.APIError) {
	respondJSON(w, status, reqID, nil, nil, apiErr)
}

func respondJSON(w http.ResponseWriter, status int, reqID string, data any, pg *model.Pagination, apiErr *model.APIError) {
	outcome := "ok"
	if apiErr != nil {
		outcome = "error"
	}
	resp := model.Response{
		Status:     outcome,
		RequestID:  reqID,
		Timestamp:  time.Now().UTC(),
		Data:       data,
		Pagination: pg,
		Error:      apiErr,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
