package culture

import (
	"errors"
	"time"
)

type Culture struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CycleDays int       `json:"cycle_days"`
	CreatedAt time.Time `json:"createdAt"`
}

var (
	ErrNotFound       = errors.New("culture not found")
	ErrUnknownCulture = errors.New("unknown culture id")
)

type SetInterestsRequest struct {
	CultureIDs []string `json:"culture_ids" binding:"required,max=100,dive,uuid"`
}
