package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rarefy/app"
	"rarefy/domain/core"
	"rarefy/domain/count"
	"rarefy/domain/rarefaction"
	apperrors "rarefy/internal/errors"
)

// createRunRequest is the JSON body of POST /api/v1/runs. The count matrix
// is taxa-major: one row per taxon, one column per sample.
type createRunRequest struct {
	Table struct {
		Taxa    []string  `json:"taxa"`
		Samples []string  `json:"samples"`
		Counts  [][]int64 `json:"counts"`
	} `json:"table"`
	Config rarefaction.Config `json:"config"`
}

// errorResponse is the JSON error envelope
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.TableInvalid("request body is not valid JSON: "+err.Error()))
		return
	}

	taxa := make([]core.TaxonID, len(req.Table.Taxa))
	for i, t := range req.Table.Taxa {
		taxa[i] = core.TaxonID(t)
	}
	samples := make([]core.SampleID, len(req.Table.Samples))
	for j, smp := range req.Table.Samples {
		samples[j] = core.SampleID(smp)
	}
	table, err := count.NewTable(taxa, samples, req.Table.Counts)
	if err != nil {
		s.writeError(w, apperrors.WithCode(apperrors.CodeTableInvalid, err))
		return
	}

	outcome, err := s.service.Execute(r.Context(), app.RunRequest{Table: table, Config: req.Config})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, outcome)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, apperrors.WithCode(apperrors.CodeNotFound, err))
		return
	}
	run, err := s.service.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListRuns(r.Context(), 20)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, apperrors.WithCode(apperrors.CodeNotFound, err))
		return
	}
	run, err := s.service.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(renderReportHTML(run))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case apperrors.CodeConfigInvalid, apperrors.CodeTableInvalid:
		status = http.StatusBadRequest
	case apperrors.CodeInsufficientDepth:
		status = http.StatusUnprocessableEntity
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	s.writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}
