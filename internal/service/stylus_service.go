package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"stylusnotes/internal/canvas"
	"stylusnotes/internal/domain"
	"stylusnotes/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Stylus Service: the live canvas session and its notes
// ─────────────────────────────────────────────────────────────

// Tracker follows the blob file of the open note so edits made by another
// process can be reported.
type Tracker interface {
	Track(noteID, path string) error
	Untrack(noteID string)
}

// StylusService owns the single live canvas and persists its frames. It is
// the canvas.Persister handed to Canvas.Save.
type StylusService struct {
	store     domain.StylusNoteStore
	blobs     *storage.BlobStore
	emitter   EventEmitter
	newCanvas func() *canvas.Canvas

	mu      sync.Mutex
	cv      *canvas.Canvas
	noteID  string
	tracker Tracker
	written map[string][sha256.Size]byte
}

// NewStylusService creates the service with a fresh canvas from newCanvas.
func NewStylusService(
	store domain.StylusNoteStore,
	blobs *storage.BlobStore,
	emitter EventEmitter,
	newCanvas func() *canvas.Canvas,
) *StylusService {
	if newCanvas == nil {
		newCanvas = func() *canvas.Canvas { return canvas.New() }
	}
	return &StylusService{
		store:     store,
		blobs:     blobs,
		emitter:   emitter,
		newCanvas: newCanvas,
		cv:        newCanvas(),
		written:   make(map[string][sha256.Size]byte),
	}
}

// SetTracker installs the watcher that follows the open note's blob.
func (s *StylusService) SetTracker(t Tracker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker = t
}

// Canvas returns the live canvas.
func (s *StylusService) Canvas() *canvas.Canvas {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cv
}

// CurrentNoteID returns the id of the note loaded into the canvas, or "" for an unsaved canvas.
func (s *StylusService) CurrentNoteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noteID
}

// Close releases the canvas and stops following its note.
func (s *StylusService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.untrackLocked()
	return s.cv.Close()
}

// ── Canvas session ─────────────────────────────────────────

// Do runs fn against the live canvas and broadcasts the resulting tool state.
func (s *StylusService) Do(ctx context.Context, fn func(cv *canvas.Canvas) error) (canvas.ToolState, error) {
	cv := s.Canvas()
	err := fn(cv)
	state := cv.ToolState()
	s.emitter.Emit(ctx, EventCanvasChange, state)
	return state, err
}

// NewCanvas swaps in a blank canvas that is not bound to any note.
func (s *StylusService) NewCanvas(ctx context.Context) canvas.ToolState {
	s.mu.Lock()
	old := s.cv
	s.cv = s.newCanvas()
	s.untrackLocked()
	s.noteID = ""
	cv := s.cv
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		log.Printf("stylus: close previous canvas: %v", err)
	}
	state := cv.ToolState()
	s.emitter.Emit(ctx, EventCanvasChange, state)
	return state
}

// OpenNote mounts a stored note into the canvas. When its image cannot be
// loaded the canvas stays blank, the note stays current so it can be redrawn,
// and stylus:load-failed is emitted along with the returned error.
func (s *StylusService) OpenNote(ctx context.Context, id string) (*domain.StylusNote, error) {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open note %s: %w", id, err)
	}

	s.mu.Lock()
	s.untrackLocked()
	s.noteID = note.ID
	cv := s.cv
	s.mu.Unlock()

	mountErr := cv.Mount(ctx, s.blobs, note.ImagePath)
	if mountErr != nil {
		log.Printf("stylus: load note %s: %v", note.ID, mountErr)
		s.emitter.Emit(ctx, EventLoadFailed, map[string]string{
			"noteId": note.ID,
			"error":  mountErr.Error(),
		})
	} else {
		s.track(note)
	}
	s.emitter.Emit(ctx, EventCanvasChange, cv.ToolState())
	return note, mountErr
}

// Save persists the live canvas. An empty meta.NoteID creates a note and
// leaves a fresh canvas behind; otherwise the note is updated in place.
func (s *StylusService) Save(ctx context.Context, meta domain.NoteMetadata) (*domain.StylusNote, error) {
	cv := s.Canvas()
	id, err := cv.Save(ctx, s, meta)
	if err != nil {
		return nil, err
	}

	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload saved note: %w", err)
	}

	s.mu.Lock()
	if meta.IsCreate() {
		s.untrackLocked()
		s.noteID = ""
	} else if s.noteID == id {
		s.trackLocked(note)
	}
	s.mu.Unlock()

	s.emitter.Emit(ctx, EventSaved, map[string]any{
		"noteId":  note.ID,
		"created": meta.IsCreate(),
		"title":   note.Title,
	})
	s.emitter.Emit(ctx, EventCanvasChange, cv.ToolState())
	return note, nil
}

// Persist implements canvas.Persister: the PNG goes to the blob store and the
// record to the note store.
func (s *StylusService) Persist(ctx context.Context, frame canvas.Frame, meta domain.NoteMetadata) (string, error) {
	if meta.IsCreate() {
		return s.create(ctx, frame, meta)
	}
	return meta.NoteID, s.update(ctx, frame, meta)
}

func (s *StylusService) create(ctx context.Context, frame canvas.Frame, meta domain.NoteMetadata) (string, error) {
	id := uuid.New().String()
	ref, err := s.writeBlob(id, frame.PNG)
	if err != nil {
		return "", err
	}
	note := &domain.StylusNote{
		ID:        id,
		Title:     strings.TrimSpace(meta.Title),
		ImagePath: ref,
		Folder:    meta.Folder,
		Width:     frame.Width,
		Height:    frame.Height,
	}
	if err := s.store.CreateNote(ctx, note); err != nil {
		if rmErr := s.blobs.Remove(ref); rmErr != nil {
			log.Printf("stylus: remove blob after failed create: %v", rmErr)
		}
		return "", fmt.Errorf("create stylus note: %w", err)
	}
	return id, nil
}

func (s *StylusService) update(ctx context.Context, frame canvas.Frame, meta domain.NoteMetadata) error {
	note, err := s.store.GetNote(ctx, meta.NoteID)
	if err != nil {
		return fmt.Errorf("update stylus note: %w", err)
	}
	prev, prevErr := s.blobs.Read(s.blobs.RefFor(note.ID))
	ref, err := s.writeBlob(note.ID, frame.PNG)
	if err != nil {
		return err
	}
	if title := strings.TrimSpace(meta.Title); title != "" {
		note.Title = title
	}
	note.Folder = meta.Folder
	note.ImagePath = ref
	note.Width = frame.Width
	note.Height = frame.Height
	if err := s.store.UpdateNote(ctx, note); err != nil {
		s.restoreBlob(note.ID, ref, prev, prevErr)
		return fmt.Errorf("update stylus note: %w", err)
	}
	return nil
}

// restoreBlob puts back the image a failed update overwrote, so the file keeps
// matching the record.
func (s *StylusService) restoreBlob(id, ref string, prev []byte, prevErr error) {
	var err error
	if prevErr != nil {
		err = s.blobs.Remove(ref)
	} else {
		_, err = s.writeBlob(id, prev)
	}
	if err != nil {
		log.Printf("stylus: restore blob %s after failed update: %v", id, err)
	}
}

func (s *StylusService) writeBlob(id string, png []byte) (string, error) {
	s.mu.Lock()
	s.written[id] = sha256.Sum256(png)
	s.mu.Unlock()

	ref, err := s.blobs.Write(id, png)
	if err != nil {
		return "", fmt.Errorf("store note image: %w", err)
	}
	return ref, nil
}

// ── Notes ──────────────────────────────────────────────────

func (s *StylusService) ListNotes(ctx context.Context, folder string) ([]domain.StylusNote, error) {
	return s.store.ListNotes(ctx, folder)
}

func (s *StylusService) GetNote(ctx context.Context, id string) (*domain.StylusNote, error) {
	return s.store.GetNote(ctx, id)
}

// DeleteNote removes the record and its image. Deleting the open note
// detaches the canvas from it but keeps the drawing.
func (s *StylusService) DeleteNote(ctx context.Context, id string) error {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	if err := s.store.DeleteNote(ctx, id); err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	if err := s.blobs.Remove(note.ImagePath); err != nil {
		log.Printf("stylus: remove blob %s: %v", note.ImagePath, err)
	}

	s.mu.Lock()
	delete(s.written, id)
	if s.noteID == id {
		s.untrackLocked()
		s.noteID = ""
	}
	s.mu.Unlock()

	s.emitter.Emit(ctx, EventDeleted, map[string]string{"noteId": id})
	return nil
}

func (s *StylusService) SetPinned(ctx context.Context, id string, pinned bool) (*domain.StylusNote, error) {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	note.Pinned = pinned
	if err := s.store.UpdateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("pin note: %w", err)
	}
	return note, nil
}

// SetTags replaces a note's tags. Blank and repeated tags are dropped.
func (s *StylusService) SetTags(ctx context.Context, id string, tags []string) (*domain.StylusNote, error) {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	note.Tags = cleanTags(tags)
	if err := s.store.UpdateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("tag note: %w", err)
	}
	return note, nil
}

func cleanTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := []string{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ExportPNG returns the stored image of note id, or the live canvas when id is empty.
func (s *StylusService) ExportPNG(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		var buf bytes.Buffer
		if err := s.Canvas().EncodePNG(&buf); err != nil {
			return nil, fmt.Errorf("export canvas: %w", err)
		}
		return buf.Bytes(), nil
	}
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("export note %s: %w", id, err)
	}
	return s.blobs.Read(note.ImagePath)
}

// ── External edits ─────────────────────────────────────────

// ImageChanged is the watcher callback. It emits stylus:image-changed when
// the open note's blob now differs from what this service last wrote.
func (s *StylusService) ImageChanged(ctx context.Context, noteID string) {
	s.mu.Lock()
	current := s.noteID
	last, known := s.written[noteID]
	s.mu.Unlock()
	if noteID != current {
		return
	}

	data, err := s.blobs.Read(s.blobs.RefFor(noteID))
	if err != nil {
		if !errors.Is(err, canvas.ErrImageNotFound) {
			log.Printf("stylus: read changed blob %s: %v", noteID, err)
		}
		return
	}
	if known && sha256.Sum256(data) == last {
		return
	}
	s.emitter.Emit(ctx, EventImageChanged, map[string]string{"noteId": noteID})
}

func (s *StylusService) track(note *domain.StylusNote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackLocked(note)
}

func (s *StylusService) trackLocked(note *domain.StylusNote) {
	if s.tracker == nil {
		return
	}
	p, err := s.blobs.Path(note.ImagePath)
	if err != nil {
		log.Printf("stylus: track note %s: %v", note.ID, err)
		return
	}
	if err := s.tracker.Track(note.ID, p); err != nil {
		log.Printf("stylus: track note %s: %v", note.ID, err)
	}
}

func (s *StylusService) untrackLocked() {
	if s.tracker != nil && s.noteID != "" {
		s.tracker.Untrack(s.noteID)
	}
}
