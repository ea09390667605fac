package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is a login identity. PasswordHash never leaves the process: the
// json tag excludes it from every response and from backup snapshots.
type Account struct {
	ID           string     `gorm:"primaryKey;size:36"       json:"id"`
	Username     string     `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string     `gorm:"not null"                 json:"-"`
	Role         string     `gorm:"not null"                 json:"role"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the account is past its validity at the given
// instant. Accounts without an expiry date never expire.
func (a *Account) Expired(now time.Time) bool {
	return a.ExpiryDate != nil && now.After(*a.ExpiryDate)
}

// Keyword is a vocabulary card embedded in a video document.
type Keyword struct {
	Word               string `json:"word"`
	Translation        string `json:"translation"`
	Phonetic           string `json:"phonetic,omitempty"`
	AudioURL           string `json:"audioUrl,omitempty"`
	PartOfSpeech       string `json:"partOfSpeech,omitempty"`
	Definition         string `json:"definition,omitempty"`
	ExampleSentence    string `json:"exampleSentence,omitempty"`
	ExampleTranslation string `json:"exampleTranslation,omitempty"`
	Synonyms           string `json:"synonyms,omitempty"`
	Etymology          string `json:"etymology,omitempty"`
	ImageURL           string `json:"imageUrl,omitempty"`
	ContextFromVideo   string `json:"contextFromVideo,omitempty"`
}

// CheckInRecord is one study session logged against a video. The log is
// append-only; same-day duplicates are collapsed at read time, never here.
type CheckInRecord struct {
	Date time.Time `json:"date"`
	Step int       `json:"step"`
}

// Supported video platforms.
const (
	SourceYouTube  = "youtube"
	SourceBilibili = "bilibili"
)

// ValidVideoSource reports whether s names a supported platform.
func ValidVideoSource(s string) bool {
	return s == SourceYouTube || s == SourceBilibili
}

// Video is the central document: an embeddable video plus its keyword cards
// and check-in history. Sub-documents are stored as JSON columns, mirroring
// the array-valued fields of a document store.
type Video struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	Title          string          `json:"title"`
	VideoID        string          `json:"videoId"`
	VideoSource    string          `gorm:"default:youtube"    json:"videoSource"`
	Subtitles      string          `json:"subtitles,omitempty"`
	Keywords       []Keyword       `gorm:"serializer:json"    json:"keywords"`
	CheckInRecords []CheckInRecord `gorm:"serializer:json"    json:"checkInRecords"`
	CreatedBy      string          `gorm:"index;size:36"      json:"createdBy"`
	CreatedByName  string          `gorm:"-"                  json:"createdByName,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.VideoSource == "" {
		v.VideoSource = SourceYouTube
	}
	return nil
}

// ConfigEntry is a free-form key/value setting owned by admins.
type ConfigEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	Key       string    `gorm:"uniqueIndex;not null"     json:"key"`
	Value     any       `gorm:"serializer:json"          json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Snapshot is one exported backup bundle. Accounts are exported without
// secrets and are never touched by import.
type Snapshot struct {
	Version   string       `json:"version"`
	Timestamp time.Time    `json:"timestamp"`
	Data      SnapshotData `json:"data"`
}

type SnapshotData struct {
	Videos  []Video       `json:"videos"`
	Users   []Account     `json:"users"`
	Configs []ConfigEntry `json:"configs"`
}

// SnapshotVersion tags every export; import accepts any snapshot carrying a
// data object so older bundles stay restorable.
const SnapshotVersion = "1.0"
