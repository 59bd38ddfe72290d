package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wahealth/sca-simulator/internal/application/services"
	"github.com/wahealth/sca-simulator/internal/domain/entities"
)

// Scorer runs the consultation scoring workflow
type Scorer interface {
	Score(ctx context.Context, req services.ScoreRequest) (*services.ScoreResponse, error)
}

// PeerReviewer covers sharing, history, comments and recordings
type PeerReviewer interface {
	SetShared(ctx context.Context, consultationID string, shared bool) error
	ListShared(ctx context.Context) ([]entities.ConsultationSummary, error)
	History(ctx context.Context, userID string) ([]entities.ConsultationSummary, error)
	GetConsultation(ctx context.Context, id string) (*entities.Consultation, error)
	AddComment(ctx context.Context, comment *entities.PeerComment) error
	ListComments(ctx context.Context, consultationID string) ([]entities.CommentView, error)
	AttachRecording(ctx context.Context, consultationID, audioRecording string, durationSeconds int) error
}

// CallRetriever fetches call details from the voice provider
type CallRetriever interface {
	GetCall(ctx context.Context, callID string) (*entities.CallDetails, error)
}

// ConsultationHandler handles consultation-related HTTP requests
type ConsultationHandler struct {
	scorer     Scorer
	peerReview PeerReviewer
	calls      CallRetriever
}

// NewConsultationHandler creates a new consultation handler
func NewConsultationHandler(scorer Scorer, peerReview PeerReviewer, calls CallRetriever) *ConsultationHandler {
	return &ConsultationHandler{
		scorer:     scorer,
		peerReview: peerReview,
		calls:      calls,
	}
}

type scoreRequestBody struct {
	UserID      string         `json:"user_id"`
	CaseNumber  string         `json:"case_number"`
	Transcript  string         `json:"transcript"`
	CaseDetails *entities.Case `json:"case_details,omitempty"`
}

// ScoreConsultation handles POST /api/consultations/score
func (h *ConsultationHandler) ScoreConsultation(w http.ResponseWriter, r *http.Request) {
	var body scoreRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.scorer.Score(r.Context(), services.ScoreRequest{
		UserID:      body.UserID,
		CaseNumber:  body.CaseNumber,
		Transcript:  body.Transcript,
		CaseDetails: body.CaseDetails,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

// ShareConsultation handles POST /api/consultations/{id}/share
func (h *ConsultationHandler) ShareConsultation(w http.ResponseWriter, r *http.Request) {
	h.setShared(w, r, true)
}

// UnshareConsultation handles POST /api/consultations/{id}/unshare
func (h *ConsultationHandler) UnshareConsultation(w http.ResponseWriter, r *http.Request) {
	h.setShared(w, r, false)
}

func (h *ConsultationHandler) setShared(w http.ResponseWriter, r *http.Request, shared bool) {
	consultationID := r.PathValue("id")
	if consultationID == "" {
		respondWithError(w, http.StatusBadRequest, "consultation ID is required")
		return
	}

	if err := h.peerReview.SetShared(r.Context(), consultationID, shared); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":        consultationID,
		"is_shared": shared,
	})
}

// ListShared handles GET /api/consultations/shared
func (h *ConsultationHandler) ListShared(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.peerReview.ListShared(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"consultations": summaries,
		"count":         len(summaries),
	})
}

// GetHistory handles GET /api/consultations/history/{user_id}
func (h *ConsultationHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	summaries, err := h.peerReview.History(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"consultations": summaries,
		"count":         len(summaries),
	})
}

type addCommentBody struct {
	UserID  string `json:"user_id"`
	Comment string `json:"comment"`
}

// AddComment handles POST /api/consultations/{id}/comments
func (h *ConsultationHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	consultationID := r.PathValue("id")
	if consultationID == "" {
		respondWithError(w, http.StatusBadRequest, "consultation ID is required")
		return
	}

	var body addCommentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment := &entities.PeerComment{
		ConsultationID: consultationID,
		UserID:         body.UserID,
		Comment:        body.Comment,
	}
	if err := h.peerReview.AddComment(r.Context(), comment); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         comment.ID,
		"created_at": comment.CreatedAt,
	})
}

// ListComments handles GET /api/consultations/{id}/comments
func (h *ConsultationHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	consultationID := r.PathValue("id")
	if consultationID == "" {
		respondWithError(w, http.StatusBadRequest, "consultation ID is required")
		return
	}

	comments, err := h.peerReview.ListComments(r.Context(), consultationID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"comments": comments,
		"count":    len(comments),
	})
}

type attachRecordingBody struct {
	AudioRecording  string `json:"audio_recording"`
	DurationSeconds int    `json:"duration_seconds"`
}

// AttachRecording handles PATCH /api/consultations/{id}/recording
func (h *ConsultationHandler) AttachRecording(w http.ResponseWriter, r *http.Request) {
	consultationID := r.PathValue("id")
	if consultationID == "" {
		respondWithError(w, http.StatusBadRequest, "consultation ID is required")
		return
	}

	var body attachRecordingBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.peerReview.AttachRecording(r.Context(), consultationID, body.AudioRecording, body.DurationSeconds); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// GetConsultation handles GET /api/consultations/{id}
func (h *ConsultationHandler) GetConsultation(w http.ResponseWriter, r *http.Request) {
	consultationID := r.PathValue("id")
	if consultationID == "" {
		respondWithError(w, http.StatusBadRequest, "consultation ID is required")
		return
	}

	consultation, err := h.peerReview.GetConsultation(r.Context(), consultationID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, consultation)
}

// GetCallDetails handles GET /api/consultations/vapi/call/{call_id}
func (h *ConsultationHandler) GetCallDetails(w http.ResponseWriter, r *http.Request) {
	if h.calls == nil {
		respondWithError(w, http.StatusServiceUnavailable, "call retrieval is not available")
		return
	}

	callID := r.PathValue("call_id")
	if callID == "" {
		respondWithError(w, http.StatusBadRequest, "call ID is required")
		return
	}

	details, err := h.calls.GetCall(r.Context(), callID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, details)
}
