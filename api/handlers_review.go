package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"invest-retro/database"
	"invest-retro/marketdata"
	"invest-retro/review"
)

// handleCreateReview runs the full review pipeline and returns the AI
// feedback on success
func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request, userID int64) {
	var req review.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	feedback, err := s.reviews.CreateReview(r.Context(), userID, req)
	if err != nil {
		s.writeReviewError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, feedback)
}

// handleGetReview returns one of the caller's review notes
func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid review id", nil)
		return
	}

	note, err := s.reviews.GetReview(id, userID)
	if err != nil {
		s.writeReviewError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// handleListReviews returns the caller's review notes, newest first
func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request, userID int64) {
	skip := getIntParam(r, "skip", 0, intPtr(0), nil)
	limit := getIntParam(r, "limit", 20, intPtr(1), intPtr(100))

	notes, err := s.reviews.ListReviews(userID, skip, limit)
	if err != nil {
		s.writeReviewError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notes)
}

type finalMemoRequest struct {
	FinalMemo string `json:"final_memo"`
}

// handleUpdateFinalMemo sets the owner's final memo on a review note
func (s *Server) handleUpdateFinalMemo(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid review id", nil)
		return
	}

	var req finalMemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	note, err := s.reviews.UpdateFinalMemo(id, userID, req.FinalMemo)
	if err != nil {
		s.writeReviewError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// writeReviewError maps each pipeline failure kind to its caller-visible
// status code
func (s *Server) writeReviewError(w http.ResponseWriter, err error) {
	var validationErr *database.ValidationError
	var notFoundErr *database.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error(), nil)
	case errors.As(err, &notFoundErr):
		respondWithError(w, http.StatusNotFound, "review note not found", nil)
	case errors.Is(err, marketdata.ErrTimeout):
		respondWithError(w, http.StatusGatewayTimeout, "market data service did not respond in time", err)
	case errors.Is(err, marketdata.ErrUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, "market data service unavailable, please retry later", err)
	case errors.Is(err, review.ErrClassification):
		respondWithError(w, http.StatusInternalServerError, err.Error(), nil)
	case errors.Is(err, review.ErrStorage):
		respondWithError(w, http.StatusInternalServerError, "failed to save review note, please retry later", err)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal server error", err)
	}
}
