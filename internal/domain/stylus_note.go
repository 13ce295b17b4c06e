package domain

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultNoteTitle = "Untitled"

	FolderDefault  = "Default"
	FolderWork     = "Work"
	FolderPersonal = "Personal"
)

// ErrNoteNotFound is returned by every StylusNoteStore when the id is unknown.
var ErrNoteNotFound = errors.New("stylus note not found")

// KnownFolders lists the folders offered by the host toolbar. Any other name is accepted too.
var KnownFolders = []string{FolderDefault, FolderWork, FolderPersonal}

// StylusNote is a handwritten note: a PNG frame on disk plus its metadata.
type StylusNote struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	ImagePath string    `json:"imagePath" bson:"image_path"`
	Folder    string    `json:"folder" bson:"folder"`
	Tags      []string  `json:"tags" bson:"tags"`
	Pinned    bool      `json:"pinned" bson:"pinned"`
	Width     int       `json:"width" bson:"width"`
	Height    int       `json:"height" bson:"height"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// NoteMetadata travels with a finished frame on save.
// An empty NoteID means create, anything else means update.
type NoteMetadata struct {
	Title  string `json:"title"`
	Folder string `json:"folder"`
	NoteID string `json:"noteId,omitempty"`
}

// IsCreate reports whether saving with this metadata creates a new note.
func (m NoteMetadata) IsCreate() bool {
	return m.NoteID == ""
}

// Normalize fills in the defaults a new note gets when fields are left blank.
func (n *StylusNote) Normalize() {
	if n.Title == "" {
		n.Title = DefaultNoteTitle
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
}

type StylusNoteStore interface {
	CreateNote(ctx context.Context, n *StylusNote) error
	GetNote(ctx context.Context, id string) (*StylusNote, error)
	// ListNotes returns pinned notes first, then newest first. An empty folder lists everything.
	ListNotes(ctx context.Context, folder string) ([]StylusNote, error)
	UpdateNote(ctx context.Context, n *StylusNote) error
	DeleteNote(ctx context.Context, id string) error
}
