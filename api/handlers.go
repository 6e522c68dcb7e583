package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/poiesic/empverify/core"
	"github.com/poiesic/empverify/duplicate"
	"github.com/poiesic/empverify/search"
)

// health is the /health body.
type health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.records.SystemInfo(r.Context()); err != nil {
		s.logger.WarnContext(r.Context(), "health check failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, health{Status: "DOWN", Message: "Ledger connection is down"})
		return
	}
	writeJSON(w, http.StatusOK, health{Status: "UP", Message: "Ledger connection is healthy"})
}

// --- search ---

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var criteria search.Criteria
	if err := decode(r, &criteria); err != nil {
		writeError(w, err)
		return
	}
	s.search(w, r, criteria)
}

func (s *Server) handleSearchByName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if strings.TrimSpace(q.Get("name")) == "" {
		writeError(w, fmt.Errorf("%w: name is required", errBadRequest))
		return
	}
	maxResults, err := intParam(q.Get("maxResults"), search.DefaultMaxResults)
	if err != nil {
		writeError(w, err)
		return
	}
	s.search(w, r, search.Criteria{
		EmployeeName: q.Get("name"),
		EmployerID:   q.Get("employerId"),
		SearchType:   search.MatchType(q.Get("searchType")),
		MaxResults:   maxResults,
	})
}

func (s *Server) handleSearchByEmployer(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if strings.TrimSpace(q.Get("employerId")) == "" {
		writeError(w, fmt.Errorf("%w: employerId is required", errBadRequest))
		return
	}
	maxResults, err := intParam(q.Get("maxResults"), 20)
	if err != nil {
		writeError(w, err)
		return
	}
	s.search(w, r, search.Criteria{EmployerID: q.Get("employerId"), MaxResults: maxResults})
}

func (s *Server) handleSearchByCompositeKey(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("name") == "" || q.Get("employerId") == "" || q.Get("startDate") == "" {
		writeError(w, fmt.Errorf("%w: name, employerId and startDate are required", errBadRequest))
		return
	}
	s.search(w, r, search.Criteria{
		EmployeeName:        q.Get("name"),
		EmployerID:          q.Get("employerId"),
		EmploymentStartDate: q.Get("startDate"),
		EmploymentEndDate:   q.Get("endDate"),
	})
}

func (s *Server) handleSearchByNationalID(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("nationalId") == "" || q.Get("employerId") == "" {
		writeError(w, fmt.Errorf("%w: nationalId and employerId are required", errBadRequest))
		return
	}
	s.search(w, r, search.Criteria{NationalID: q.Get("nationalId"), EmployerID: q.Get("employerId")})
}

func (s *Server) handleVerification(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("name") == "" || q.Get("employer") == "" {
		writeError(w, fmt.Errorf("%w: name and employer are required", errBadRequest))
		return
	}
	criteria := search.VerificationCriteria(q.Get("name"), q.Get("employer"))
	criteria.EmploymentStartDate = q.Get("expectedStartDate")
	criteria.EmploymentEndDate = q.Get("expectedEndDate")

	resp, err := s.searcher.Search(r.Context(), criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	if resp.TotalResults == 0 {
		writeSuccess(w, http.StatusNotFound, "No employment record found for verification", resp)
		return
	}
	writeSuccess(w, http.StatusOK,
		fmt.Sprintf("Employment verification completed: %d matching record(s)", resp.TotalResults), resp)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, criteria search.Criteria) {
	resp, err := s.searcher.Search(r.Context(), criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Search completed: %d result(s)", resp.TotalResults), resp)
}

// --- duplicates ---

func (s *Server) handleCheckDuplicates(w http.ResponseWriter, r *http.Request) {
	var req duplicate.Request
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := s.detector.Check(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Duplicate check completed", result)
}

func (s *Server) handleCheckDuplicatesBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []duplicate.Request
	if err := decode(r, &reqs); err != nil {
		writeError(w, err)
		return
	}
	for i, req := range reqs {
		if err := req.Validate(); err != nil {
			writeError(w, fmt.Errorf("request %d: %w", i, err))
			return
		}
	}
	results, err := s.detector.CheckBatch(r.Context(), reqs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Duplicate check completed for %d request(s)", len(results)), results)
}

func (s *Server) handleDuplicateConfig(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "Duplicate prevention configuration", s.records.DuplicateConfig())
}

// --- records ---

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var record core.EmploymentRecord
	if err := decode(r, &record); err != nil {
		writeError(w, err)
		return
	}
	out, err := s.records.Create(r.Context(), &record, r.URL.Query().Get("checkLevel"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Employment record created successfully", out)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch core.EmploymentRecord
	if err := decode(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	out, err := s.records.Update(r.Context(), chi.URLParam(r, "employeeId"), &patch, r.URL.Query().Get("checkLevel"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Employment record updated successfully", out)
}

func (s *Server) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var record core.EmploymentRecord
	if err := decode(r, &record); err != nil {
		writeError(w, err)
		return
	}
	out, err := s.records.Upsert(r.Context(), &record, r.URL.Query().Get("checkLevel"))
	if err != nil {
		writeError(w, err)
		return
	}
	if out.WasUpdated {
		writeSuccess(w, http.StatusOK, "Employment record updated successfully", out)
		return
	}
	writeSuccess(w, http.StatusCreated, "Employment record created successfully", out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := s.records.Get(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Employment record retrieved successfully", record)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.records.History(r.Context(), chi.URLParam(r, "employeeId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Employment record history retrieved successfully", history)
}

func (s *Server) handleGetByIdentifiers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	record, err := s.records.GetByIdentifiers(r.Context(), q.Get("nationalId"), q.Get("employerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Employment record retrieved successfully", record)
}

func (s *Server) handleUpdateByIdentifiers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var patch core.EmploymentRecord
	if err := decode(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	existing, err := s.records.GetByIdentifiers(r.Context(), q.Get("nationalId"), q.Get("employerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := s.records.Update(r.Context(), existing.EmployeeID, &patch, q.Get("checkLevel"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Employment record updated successfully", out)
}

func (s *Server) handleCounter(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r.URL.Query().Get("year"), 0)
	if err != nil {
		writeError(w, err)
		return
	}
	counter, err := s.records.Counter(r.Context(), year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Employee counter retrieved successfully", counter)
}

func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.records.SystemInfo(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "System information retrieved successfully", info)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %w", errBadRequest, err)
	}
	return nil
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errBadRequest, raw)
	}
	return n, nil
}
