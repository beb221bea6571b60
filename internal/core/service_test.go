package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/xls2vcard/internal/table"
)

// recordingRenderer writes one text line per report line.
type recordingRenderer struct {
	mu    sync.Mutex
	lines []ReportLine
	err   error
}

func (r *recordingRenderer) Render(w io.Writer, lines []ReportLine) error {
	r.mu.Lock()
	r.lines = lines
	r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, l := range lines {
		fmt.Fprintln(w, l.Text)
	}
	return nil
}

// blockingLoader holds every Load until release is closed.
type blockingLoader struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingLoader) Load(name string, data []byte) (*table.Table, error) {
	b.started <- struct{}{}
	<-b.release
	return table.Load(name, data)
}

const contactsCSV = "FirstName,LastName,Email,Mobile,Office,Dept\n" +
	"Ana,Gomez,ana@x.com,555-1234,,Sales\n" +
	",,,,,\n" +
	",,,,556,\n"

func newTestService(r Renderer) *Service {
	return NewService(&table.Loader{}, r, Options{MaxConcurrent: 2, MaxWait: time.Second})
}

func TestService_Columns(t *testing.T) {
	svc := newTestService(&recordingRenderer{})

	cols, err := svc.Columns(context.Background(), &Upload{Name: "c.csv", Data: []byte(contactsCSV)})
	if err != nil {
		t.Fatalf("Columns() error = %v", err)
	}
	want := []string{"FirstName", "LastName", "Email", "Mobile", "Office", "Dept"}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("Columns() = %v, want %v", cols, want)
	}
}

func TestService_ColumnsErrors(t *testing.T) {
	svc := newTestService(&recordingRenderer{})

	_, err := svc.Columns(context.Background(), nil)
	if !errors.Is(err, ErrNoFile) {
		t.Errorf("Columns(nil) error = %v, want ErrNoFile", err)
	}

	_, err = svc.Columns(context.Background(), &Upload{Name: "bad.xlsx", Data: []byte("PK\x03\x04garbage")})
	if !errors.Is(err, ErrUnreadableFile) || !IsBadRequest(err) {
		t.Errorf("Columns(garbage) error = %v, want unreadable bad request", err)
	}
}

func TestService_ConvertVCard(t *testing.T) {
	svc := newTestService(&recordingRenderer{})

	p, vcf, err := svc.ConvertVCard(context.Background(), ConvertRequest{
		File:        &Upload{Name: "c.csv", Data: []byte(contactsCSV)},
		Mapping:     FieldMapping{"first_name": "FirstName", "last_name": "LastName", "email": "Email", "office": "Office"},
		Phones:      []PhoneDescriptor{{Column: "Mobile", Label: "mobile"}, {Column: "office", Label: "work"}},
		GroupColumn: "Dept",
		NameLabel:   "  ",
	})
	if err != nil {
		t.Fatalf("ConvertVCard() error = %v", err)
	}
	if p.ID == "" {
		t.Error("Projection.ID is empty")
	}

	// The all-blank row is skipped by the loader; the phone-only row stays.
	want := "BEGIN:VCARD\n" +
		"VERSION:3.0\n" +
		"N:Gomez;Ana;;;\n" +
		"FN:Ana Gomez\n" +
		"EMAIL:ana@x.com\n" +
		"TEL;TYPE=MOBILE:555-1234\n" +
		"CATEGORIES:Sales\n" +
		"END:VCARD\n" +
		"BEGIN:VCARD\n" +
		"VERSION:3.0\n" +
		"N:;;;;\n" +
		"FN:Unnamed Contact\n" +
		"TEL;TYPE=WORK:556\n" +
		"END:VCARD\n"
	if vcf != want {
		t.Errorf("ConvertVCard() =\n%s\nwant\n%s", vcf, want)
	}
}

func TestService_ProjectMissingInput(t *testing.T) {
	svc := newTestService(&recordingRenderer{})
	file := &Upload{Name: "c.csv", Data: []byte(contactsCSV)}

	tests := []struct {
		name string
		req  ConvertRequest
	}{
		{"no file", ConvertRequest{Mapping: FieldMapping{"first_name": "FirstName"}}},
		{"empty file", ConvertRequest{File: &Upload{Name: "c.csv"}, Mapping: FieldMapping{"first_name": "FirstName"}}},
		{"no mapping", ConvertRequest{File: file}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Project(context.Background(), tt.req)
			if !errors.Is(err, ErrMissingInput) {
				t.Errorf("Project() error = %v, want ErrMissingInput", err)
			}
		})
	}
}

func TestService_ProjectUnknownColumnsTolerated(t *testing.T) {
	svc := newTestService(&recordingRenderer{})

	p, err := svc.Project(context.Background(), ConvertRequest{
		File:    &Upload{Name: "c.csv", Data: []byte(contactsCSV)},
		Mapping: FieldMapping{"first_name": "Given", "email": "Email"},
	})
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if !reflect.DeepEqual(p.Mapping.Unknown, []string{"Given"}) {
		t.Errorf("Unknown = %v, want [Given]", p.Mapping.Unknown)
	}
	if p.Contacts[0].FullName != UnnamedContact || p.Contacts[0].Email != "ana@x.com" {
		t.Errorf("first contact = %+v", p.Contacts[0])
	}
}

func TestService_ExportPDF(t *testing.T) {
	r := &recordingRenderer{}
	svc := NewService(&table.Loader{}, r, Options{ReportTitle: "Directory"})

	out, err := svc.ExportPDF(context.Background(), []Contact{{LabeledName: "Ana"}})
	if err != nil {
		t.Fatalf("ExportPDF() error = %v", err)
	}
	if !strings.HasPrefix(string(out), "Directory\n") {
		t.Errorf("ExportPDF() output = %q", out)
	}
	if len(r.lines) != 4 {
		t.Errorf("rendered %d lines, want 4", len(r.lines))
	}
}

func TestService_ExportPDFErrors(t *testing.T) {
	_, err := newTestService(&recordingRenderer{}).ExportPDF(context.Background(), nil)
	if !errors.Is(err, ErrNoContacts) {
		t.Errorf("ExportPDF(nil) error = %v, want ErrNoContacts", err)
	}

	boom := errors.New("font missing")
	_, err = newTestService(&recordingRenderer{err: boom}).ExportPDF(context.Background(), []Contact{{}})
	if !errors.Is(err, boom) {
		t.Errorf("ExportPDF() error = %v, want %v", err, boom)
	}
	if KindOf(err) != KindInternal || MapError(err).Code != "PDF002" {
		t.Errorf("render failure kind = %v code = %q", KindOf(err), MapError(err).Code)
	}
}

func TestService_SaturationAndDrain(t *testing.T) {
	loader := &blockingLoader{started: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(loader, &recordingRenderer{}, Options{MaxConcurrent: 1, MaxWait: 50 * time.Millisecond})
	upload := &Upload{Name: "c.csv", Data: []byte(contactsCSV)}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Columns(context.Background(), upload)
		done <- err
	}()
	<-loader.started

	if got := svc.LimiterStatus().Active; got != 1 {
		t.Errorf("Active = %d, want 1", got)
	}

	_, err := svc.Columns(context.Background(), upload)
	if !errors.Is(err, ErrTooManyConversions) {
		t.Errorf("second Columns() error = %v, want ErrTooManyConversions", err)
	}

	close(loader.release)
	if err := <-done; err != nil {
		t.Errorf("first Columns() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.WaitForConversions(ctx); err != nil {
		t.Errorf("WaitForConversions() error = %v", err)
	}
}
