package entities

import "time"

// Consultation is one scored consultation attempt. Rows are append-only:
// re-scoring the same transcript always creates a new row. The only mutations
// after creation are the shared flag and the audio-recording reference.
type Consultation struct {
	ID               string           `json:"id" db:"id"`
	UserID           string           `json:"user_id" db:"user_id"`
	CaseID           string           `json:"case_id" db:"case_id"`
	Transcript       string           `json:"transcript" db:"transcript"`
	OverallScore     float64          `json:"overall_score" db:"overall_score"`
	Feedback         string           `json:"feedback" db:"feedback"`
	IsShared         bool             `json:"is_shared" db:"is_shared"`
	DomainScores     DomainScores     `json:"domain_scores"`
	CoverageAnalysis CoverageAnalysis `json:"coverage_analysis"`
	AudioRecording   *string          `json:"audio_recording,omitempty" db:"audio_recording"`
	DurationSeconds  *int             `json:"duration_seconds,omitempty" db:"duration_seconds"`
	CommentCount     int              `json:"comment_count"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// HasRecording reports whether an audio recording is attached
func (c *Consultation) HasRecording() bool {
	return c.AudioRecording != nil && *c.AudioRecording != ""
}

// ConsultationSummary is the annotated list projection used by the history
// and shared-consultation views
type ConsultationSummary struct {
	ID              string       `json:"id"`
	Timestamp       time.Time    `json:"timestamp"`
	CaseDetails     CaseSummary  `json:"case_details"`
	Scores          DomainScores `json:"scores"`
	OverallScore    float64      `json:"overall_score"`
	Feedback        string       `json:"feedback"`
	HasRecording    bool         `json:"has_recording"`
	DurationSeconds *int         `json:"duration_seconds,omitempty"`
	IsShared        bool         `json:"is_shared"`
	CommentCount    int          `json:"comment_count"`
}

// MaxCommentLength bounds a peer comment body
const MaxCommentLength = 300

// PeerComment is feedback from a peer on a shared consultation. Comments are
// append-only; unsharing the parent does not remove them.
type PeerComment struct {
	ID             string    `json:"id" db:"id"`
	ConsultationID string    `json:"consultation_id" db:"consultation_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Comment        string    `json:"comment" db:"comment"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// CommentView is a peer comment resolved with the commenting user's display name
type CommentView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
