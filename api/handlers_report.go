package api

import (
	"net/http"
)

// handleReport aggregates the caller's reviews over a trailing window
// (default 30 days)
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, userID int64) {
	days := getIntParam(r, "days", 30, intPtr(1), intPtr(365))

	report, err := s.reports.BuildReport(userID, days)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to build report", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
