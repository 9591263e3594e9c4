package jsonsheet

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/importer"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/output"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/parser"
)

// subscriberBuffer is the number of state snapshots queued per subscriber
// before newer ones are dropped.
const subscriberBuffer = 32

// Session holds one document and its converted workbook, and serializes
// every operation on them.
//
// Import and Convert block the calling goroutine; state can be read from
// other goroutines at any time through State and Subscribe. Starting an
// import, or calling Clear, cancels whatever operation is in flight and
// discards its results.
type Session struct {
	opts   SessionOptions
	logger *log.Logger
	id     string

	mu          sync.Mutex
	doc         *models.Document
	recordCount int
	workbook    *models.Workbook
	fileName    string
	fileSize    int64
	terms       []models.SearchTerm
	progress    int
	phase       models.Phase
	errMsg      string
	activeSheet string

	// gen is bumped whenever in-flight work is superseded; an operation
	// only writes state while gen still has the value it started with.
	gen    uint64
	cancel context.CancelFunc

	subscribers map[chan models.State]struct{}
}

// NewSession creates an empty Session.
func NewSession(opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		opts:        opts,
		logger:      logger,
		id:          uuid.New().String(),
		phase:       models.PhaseIdle,
		subscribers: make(map[chan models.State]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Import reads and parses f, replacing the current document.
// Any import already running is cancelled first. On failure the document
// is cleared, progress reset to 0 and the error message stored; the error
// is also returned. An import superseded by another import or by Clear
// returns ErrImportCancelled and leaves state to the newer operation.
func (s *Session) Import(ctx context.Context, f importer.File) error {
	s.mu.Lock()
	s.cancelLocked()
	s.gen++
	gen := s.gen
	opCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.doc = nil
	s.recordCount = 0
	s.fileName = filepath.Base(f.Name)
	s.fileSize = f.Size
	s.errMsg = ""
	s.progress = 0
	s.phase = models.PhaseImporting
	s.notifyLocked()
	s.mu.Unlock()
	defer cancel()

	s.logger.Printf("session %s: importing %s (%d bytes)", s.id, s.fileName, f.Size)

	doc, err := importer.Import(opCtx, f, s.opts.Import, func(p int) {
		s.setProgress(gen, p)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		s.logger.Printf("session %s: import of %s superseded", s.id, f.Name)
		return ErrImportCancelled
	}
	s.cancel = nil
	s.phase = models.PhaseIdle

	if err != nil {
		s.doc = nil
		s.recordCount = 0
		s.progress = 0
		s.errMsg = errorMessage(err)
		s.notifyLocked()
		s.logger.Printf("session %s: import of %s failed: %v", s.id, s.fileName, err)
		return err
	}

	s.doc = doc
	s.recordCount = len(parser.ExtractRecords(doc.Value, s.opts.Convert.ResolvedRecordKey()))
	s.progress = importer.ProgressDone
	s.errMsg = ""
	s.notifyLocked()
	s.logger.Printf("session %s: imported %s (%d records)", s.id, s.fileName, s.recordCount)
	return nil
}

// Cancel stops a running import. The import then fails with
// ErrImportCancelled. It is a no-op when nothing is being imported.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == models.PhaseImporting && s.cancel != nil {
		s.cancel()
	}
}

// SetSearchTerms replaces the search terms with those parsed from text.
func (s *Session) SetSearchTerms(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms = parser.ParseSearchTerms(text)
	s.notifyLocked()
}

// Convert builds a workbook from the current document and search terms
// and selects its first sheet. It does nothing when no document is loaded
// or another operation is running. On failure the workbook is cleared and
// the error stored and returned.
func (s *Session) Convert(ctx context.Context) error {
	s.mu.Lock()
	if s.doc == nil || s.phase != models.PhaseIdle {
		s.mu.Unlock()
		return nil
	}
	s.cancelLocked()
	s.gen++
	gen := s.gen
	opCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	doc := s.doc
	terms := append([]models.SearchTerm(nil), s.terms...)
	s.phase = models.PhaseConverting
	s.progress = 0
	s.errMsg = ""
	s.notifyLocked()
	s.mu.Unlock()
	defer cancel()

	wb, err := s.convert(opCtx, doc, terms, gen)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		if err == nil {
			err = opCtx.Err()
		}
		return err
	}
	s.cancel = nil
	s.phase = models.PhaseIdle

	if err != nil {
		s.workbook = nil
		s.activeSheet = ""
		s.progress = 0
		s.errMsg = errorMessage(err)
		s.notifyLocked()
		s.logger.Printf("session %s: conversion failed: %v", s.id, err)
		return err
	}

	s.workbook = wb
	s.activeSheet = ""
	if len(wb.Sheets) > 0 {
		s.activeSheet = wb.Sheets[0].Name
	}
	s.progress = importer.ProgressDone
	s.notifyLocked()
	s.logger.Printf("session %s: converted %s into %d sheet(s)", s.id, doc.Name, len(wb.Sheets))
	return nil
}

// convert runs Convert, turning a panic into a ConversionError.
func (s *Session) convert(ctx context.Context, doc *models.Document, terms []models.SearchTerm, gen uint64) (wb *models.Workbook, err error) {
	defer func() {
		if r := recover(); r != nil {
			wb = nil
			err = NewConversionError("", "grid", fmt.Errorf("%v", r))
		}
	}()
	return Convert(ctx, doc, terms, s.opts.Convert, func(p int) {
		s.setProgress(gen, p)
	})
}

// Clear cancels any running operation and resets the session to empty.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.gen++

	s.doc = nil
	s.recordCount = 0
	s.workbook = nil
	s.fileName = ""
	s.fileSize = 0
	s.terms = nil
	s.progress = 0
	s.phase = models.PhaseIdle
	s.errMsg = ""
	s.activeSheet = ""
	s.notifyLocked()
	s.logger.Printf("session %s: cleared", s.id)
}

// SelectSheet makes name the active sheet. State is unchanged and
// ErrSheetNotFound returned if name is not in the current workbook.
func (s *Session) SelectSheet(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workbook.Grid(name); !ok {
		return ErrSheetNotFound
	}
	s.activeSheet = name
	s.notifyLocked()
	return nil
}

// ExportWorkbook writes the current workbook as xlsx to w and returns the
// file name to save it under. ErrNoWorkbook leaves state untouched; a
// write failure is stored like any other error.
func (s *Session) ExportWorkbook(w io.Writer) (string, error) {
	s.mu.Lock()
	wb := s.workbook
	s.mu.Unlock()

	if wb == nil {
		return "", ErrNoWorkbook
	}

	name := output.ExportFileName(wb.BookName)
	if err := output.WriteXLSX(w, wb, s.opts.Export); err != nil {
		err = fmt.Errorf("export %s: %w", name, err)
		s.mu.Lock()
		s.errMsg = err.Error()
		s.notifyLocked()
		s.mu.Unlock()
		return "", err
	}
	s.logger.Printf("session %s: exported %s", s.id, name)
	return name, nil
}

// State returns a snapshot of the session.
func (s *Session) State() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Document returns the loaded document, or nil.
func (s *Session) Document() *models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Workbook returns the converted workbook, or nil.
func (s *Session) Workbook() *models.Workbook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workbook
}

// Grid returns the named sheet's grid.
func (s *Session) Grid(name string) (models.Grid, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workbook.Grid(name)
}

// ActiveGrid returns the grid of the active sheet.
func (s *Session) ActiveGrid() (models.Grid, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workbook.Grid(s.activeSheet)
}

// Subscribe returns a channel receiving a state snapshot after every
// change, and a function that stops delivery and closes the channel.
// Snapshots are dropped while the channel is full.
func (s *Session) Subscribe() (<-chan models.State, func()) {
	ch := make(chan models.State, subscriberBuffer)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Session) setProgress(gen uint64, percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || percent <= s.progress {
		return
	}
	s.progress = percent
	s.notifyLocked()
}

func (s *Session) cancelLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) stateLocked() models.State {
	return models.State{
		SessionID:   s.id,
		HasDocument: s.doc != nil,
		FileName:    s.fileName,
		FileSize:    s.fileSize,
		RecordCount: s.recordCount,
		Error:       s.errMsg,
		Busy:        s.phase != models.PhaseIdle,
		Phase:       s.phase,
		Progress:    s.progress,
		SearchTerms: append([]models.SearchTerm(nil), s.terms...),
		SheetNames:  s.workbook.SheetNames(),
		ActiveSheet: s.activeSheet,
	}
}

func (s *Session) notifyLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	snapshot := s.stateLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
