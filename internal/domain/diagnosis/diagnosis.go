package diagnosis

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Diagnosis records the outcome of a plant analysis for later reference.
type Diagnosis struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	CultureID     *string   `json:"culture_id,omitempty"`
	DiagnosisName string    `json:"diagnosis_name"`
	Observation   string    `json:"observation,omitempty"`
	PhotoPath     string    `json:"photo_path,omitempty"`
	AnalysisDate  time.Time `json:"analysis_date"`
}

type CreateRequest struct {
	DiagnosisName string  `json:"diagnosis_name" binding:"required,max=150"`
	Observation   string  `json:"observation" binding:"omitempty,max=2000"`
	PhotoPath     string  `json:"photo_path" binding:"omitempty,max=500"`
	CultureID     *string `json:"culture_id" binding:"omitempty,uuid"`
}

func New(userID string, req CreateRequest) Diagnosis {
	return Diagnosis{
		ID:            uuid.NewString(),
		UserID:        userID,
		CultureID:     req.CultureID,
		DiagnosisName: strings.TrimSpace(req.DiagnosisName),
		Observation:   strings.TrimSpace(req.Observation),
		PhotoPath:     strings.TrimSpace(req.PhotoPath),
		AnalysisDate:  time.Now().UTC(),
	}
}
