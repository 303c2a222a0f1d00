package model

import "time"

const DefaultPhotoCategory = "general"

type Photo struct {
	ID           string    `db:"id" json:"id"`
	Filename     string    `db:"filename" json:"filename"`
	OriginalName string    `db:"original_name" json:"original_name"`
	Category     string    `db:"category" json:"category"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}

type CreatePhotoParams struct {
	ID           string
	Filename     string
	OriginalName string
	Category     string
}

type VideoType string

const (
	VideoTypeYouTube VideoType = "youtube"
	VideoTypeUpload  VideoType = "upload"
)

// Video is either an embedded YouTube link or an uploaded file. Source holds
// the URL or the stored filename accordingly.
type Video struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Type       VideoType `db:"type" json:"type"`
	Source     string    `db:"source" json:"source"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

type CreateVideoParams struct {
	ID     string
	Title  string
	Type   VideoType
	Source string
}

// Organizer is a team or faculty member shown on the site. Photo and the
// social links are nil when unset.
type Organizer struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Photo       *string   `db:"photo" json:"photo"`
	IsFaculty   bool      `db:"is_faculty" json:"is_faculty"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	LinkedIn    *string   `db:"linkedin" json:"linkedin"`
	GitHub      *string   `db:"github" json:"github"`
	Twitter     *string   `db:"twitter" json:"twitter"`
	Instagram   *string   `db:"instagram" json:"instagram"`
	Facebook    *string   `db:"facebook" json:"facebook"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// OrganizerOrder moves one organizer to a new position.
type OrganizerOrder struct {
	ID        string `json:"id"`
	SortOrder int    `json:"sort_order"`
}
