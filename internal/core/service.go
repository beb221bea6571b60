package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/xls2vcard/internal/logging"
	"github.com/JonMunkholm/xls2vcard/internal/table"
	"github.com/google/uuid"
)

// TableLoader parses uploaded bytes into a table.
type TableLoader interface {
	Load(name string, data []byte) (*table.Table, error)
}

// Renderer paginates report lines into a document.
type Renderer interface {
	Render(w io.Writer, lines []ReportLine) error
}

// Upload is a file received from a client.
type Upload struct {
	Name string
	Data []byte
}

// ConvertRequest carries everything a spreadsheet conversion needs.
type ConvertRequest struct {
	File        *Upload
	Mapping     FieldMapping
	Phones      []PhoneDescriptor
	GroupColumn string
	NameLabel   string
}

// Projection is the outcome of loading and projecting a spreadsheet.
type Projection struct {
	ID       string
	Columns  []string
	Contacts []Contact
	Mapping  ResolvedMapping
}

// Options configures a Service.
type Options struct {
	ReportTitle   string
	MaxConcurrent int
	MaxWait       time.Duration
}

// Service is the entry point for every conversion. It keeps no per-request
// state; the limiter only counts running conversions.
type Service struct {
	loader      TableLoader
	renderer    Renderer
	limiter     *ConversionLimiter
	reportTitle string
}

// NewService wires a loader and a renderer.
func NewService(loader TableLoader, renderer Renderer, opts Options) *Service {
	title := opts.ReportTitle
	if title == "" {
		title = DefaultReportTitle
	}
	return &Service{
		loader:      loader,
		renderer:    renderer,
		limiter:     NewConversionLimiter(opts.MaxConcurrent, opts.MaxWait),
		reportTitle: title,
	}
}

// Columns returns the column names of an upload in sheet order.
func (s *Service) Columns(ctx context.Context, file *Upload) ([]string, error) {
	if file == nil || len(file.Data) == 0 {
		return nil, BadRequest("columns", ErrNoFile)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	t, err := s.load(file)
	if err != nil {
		return nil, err
	}
	return t.Columns, nil
}

// Project loads the upload and turns every row into a contact.
func (s *Service) Project(ctx context.Context, req ConvertRequest) (*Projection, error) {
	if req.File == nil || len(req.File.Data) == 0 || len(req.Mapping) == 0 {
		return nil, BadRequest("project", ErrMissingInput)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	id := uuid.NewString()
	log := logging.WithFields(ctx, "conversion_id", id, "file", req.File.Name)
	start := time.Now()

	t, err := s.load(req.File)
	if err != nil {
		log.Warn("spreadsheet rejected", "error", err)
		return nil, err
	}

	rm, err := Resolve(t.Columns, req.Mapping, req.Phones, req.GroupColumn)
	if err != nil {
		return nil, err
	}
	if len(rm.Unknown) > 0 {
		log.Debug("mapping references unknown columns", "columns", rm.Unknown)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contacts := ProjectAll(t.Rows, rm, strings.TrimSpace(req.NameLabel))

	log.Info("contacts projected",
		"format", t.Format,
		"rows", len(t.Rows),
		"contacts", len(contacts),
		"bytes", len(req.File.Data),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Projection{ID: id, Columns: t.Columns, Contacts: contacts, Mapping: rm}, nil
}

// ConvertVCard projects the upload and serializes it as vCard 3.0 text.
func (s *Service) ConvertVCard(ctx context.Context, req ConvertRequest) (*Projection, string, error) {
	p, err := s.Project(ctx, req)
	if err != nil {
		return nil, "", err
	}
	return p, VCards(p.Contacts), nil
}

// ExportPDF renders contacts as a paginated report. The document is built
// in memory so a render failure never leaks a partial body.
func (s *Service) ExportPDF(ctx context.Context, contacts []Contact) ([]byte, error) {
	lines, err := BuildReport(s.reportTitle, contacts)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, lines); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	logging.FromContext(ctx).Info("report rendered",
		"contacts", len(contacts),
		"lines", len(lines),
		"bytes", buf.Len(),
	)
	return buf.Bytes(), nil
}

// LimiterStatus exposes conversion slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForConversions blocks until running conversions finish or ctx ends.
func (s *Service) WaitForConversions(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func (s *Service) load(file *Upload) (*table.Table, error) {
	t, err := s.loader.Load(file.Name, file.Data)
	if err != nil {
		return nil, BadRequest("load table", fmt.Errorf("%w: %w", ErrUnreadableFile, err))
	}
	return t, nil
}
