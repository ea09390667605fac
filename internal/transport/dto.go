package transport

import (
	"time"

	"github.com/echotube/echotube/internal/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserInfo struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Role       string     `json:"role"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
}

func UserInfoFrom(a *models.Account) UserInfo {
	return UserInfo{
		ID:         a.ID,
		Username:   a.Username,
		Role:       a.Role,
		ExpiryDate: a.ExpiryDate,
	}
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserInfo  `json:"user"`
}

type CreateAccountRequest struct {
	Username   string     `json:"username"`
	Password   string     `json:"password"`
	Role       string     `json:"role"`
	ExpiryDate *time.Time `json:"expiryDate"`
}

type UpdateAccountRequest struct {
	Password    *string    `json:"password"`
	Role        *string    `json:"role"`
	ExpiryDate  *time.Time `json:"expiryDate"`
	ClearExpiry bool       `json:"clearExpiry"`
}

type CreateVideoRequest struct {
	Title       string           `json:"title"`
	VideoID     string           `json:"videoId"`
	VideoSource string           `json:"videoSource"`
	Subtitles   string           `json:"subtitles"`
	Keywords    []models.Keyword `json:"keywords"`
}

type PatchVideoRequest struct {
	Title       *string           `json:"title"`
	VideoID     *string           `json:"videoId"`
	VideoSource *string           `json:"videoSource"`
	Subtitles   *string           `json:"subtitles"`
	Keywords    *[]models.Keyword `json:"keywords"`
}

type CheckInRequest struct {
	Step int `json:"step"`
}

type CheckInResponse struct {
	Message      string `json:"message"`
	TotalRecords int    `json:"totalRecords"`
	DistinctDays int    `json:"distinctDays"`
}

type SetConfigRequest struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// ImportRequest distinguishes a missing data object (malformed snapshot)
// from present-but-empty collections via the pointer.
type ImportRequest struct {
	Version   string               `json:"version"`
	Timestamp time.Time            `json:"timestamp"`
	Data      *models.SnapshotData `json:"data"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}
