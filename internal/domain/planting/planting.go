package planting

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the only accepted wire format for calendar dates.
const DateLayout = "2006-01-02"

var (
	ErrNotFound    = errors.New("planting not found")
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")
)

// Date is a calendar day in UTC, serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{t.UTC()}, nil
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// PredictHarvest is the planting day plus the crop cycle length.
func PredictHarvest(plantedOn Date, cycleDays int) Date {
	return plantedOn.AddDays(cycleDays)
}

type Planting struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	CultureID            string    `json:"culture_id"`
	CultureName          string    `json:"culture_name"`
	PlantingDate         Date      `json:"planting_date"`
	PredictedHarvestDate Date      `json:"predicted_harvest_date"`
	Notes                string    `json:"notes,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
}

type HistoryEvent struct {
	ID          string    `json:"id"`
	PlantingID  string    `json:"planting_id"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description,omitempty"`
	EventDate   Date      `json:"event_date"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserHistoryEvent is a history event enriched with its planting, used by the
// admin view across all of a user's plantings.
type UserHistoryEvent struct {
	HistoryEvent
	CultureName string `json:"culture_name"`
}

type CreatePlantingRequest struct {
	CultureID    string `json:"culture_id" binding:"required,uuid"`
	PlantingDate string `json:"planting_date" binding:"required,isodate"`
	Notes        string `json:"notes" binding:"omitempty,max=1000"`
}

type AddHistoryRequest struct {
	EventType   string `json:"event_type" binding:"required,min=2,max=80"`
	EventDate   string `json:"event_date" binding:"required,isodate"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

func NewPlanting(userID, cultureID, cultureName string, plantedOn Date, cycleDays int, notes string) Planting {
	return Planting{
		ID:                   uuid.NewString(),
		UserID:               userID,
		CultureID:            cultureID,
		CultureName:          cultureName,
		PlantingDate:         plantedOn,
		PredictedHarvestDate: PredictHarvest(plantedOn, cycleDays),
		Notes:                strings.TrimSpace(notes),
		CreatedAt:            time.Now().UTC(),
	}
}

func NewHistoryEvent(plantingID string, req AddHistoryRequest, on Date) HistoryEvent {
	return HistoryEvent{
		ID:          uuid.NewString(),
		PlantingID:  plantingID,
		EventType:   strings.TrimSpace(req.EventType),
		Description: strings.TrimSpace(req.Description),
		EventDate:   on,
		CreatedAt:   time.Now().UTC(),
	}
}
