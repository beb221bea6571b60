package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/JonMunkholm/xls2vcard/internal/core"
)

const (
	vcardFilename = "contacts.vcf"
	pdfFilename   = "contacts.pdf"
)

// columnsResponse is returned by the column inspection endpoint.
type columnsResponse struct {
	Columns []string `json:"columns"`
}

// contactsResponse is the contacts preview: the columns plus contacts in the
// shape the PDF endpoint accepts.
type contactsResponse struct {
	Columns  []string             `json:"columns"`
	Contacts []core.ReportContact `json:"contacts"`
}

// healthResponse reports liveness and conversion slot usage.
type healthResponse struct {
	Status      string             `json:"status"`
	Conversions core.LimiterStatus `json:"conversions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Conversions: s.service.LimiterStatus(),
	})
}

// handlePreviewColumns returns the column names of an uploaded spreadsheet.
func (s *Server) handlePreviewColumns(w http.ResponseWriter, r *http.Request) {
	upload, err := s.parseUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	columns, err := s.service.Columns(r.Context(), upload)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, columnsResponse{Columns: columns})
}

// handleConvert returns the upload as a vCard download.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseConvertRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	p, vcf, err := s.service.ConvertVCard(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", core.VCardMediaType)
	w.Header().Set("Content-Disposition", "attachment; filename="+vcardFilename)
	w.Header().Set("X-Conversion-ID", p.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, vcf)
}

// handleContacts returns the projected contacts as JSON.
func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseConvertRequest(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	p, err := s.service.Project(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	contacts := make([]core.ReportContact, len(p.Contacts))
	for i, c := range p.Contacts {
		contacts[i] = core.ToReport(c)
	}

	w.Header().Set("X-Conversion-ID", p.ID)
	writeJSON(w, http.StatusOK, contactsResponse{Columns: p.Columns, Contacts: contacts})
}

// handleExportPDF renders the JSON contact list as a PDF download.
func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	contacts, err := core.ParseReportRequest(body)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	doc, err := s.service.ExportPDF(r.Context(), contacts)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+pdfFilename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// parseUpload reads the "file" part of a multipart request. A missing part
// yields a nil upload so the service decides which error applies.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (*core.Upload, error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, core.BadRequestf("parse form", "invalid form: %v", err)
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, core.BadRequestf("parse form", "invalid form: %v", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &core.Upload{Name: header.Filename, Data: data}, nil
}

// parseConvertRequest reads the upload and the mapping form values.
func (s *Server) parseConvertRequest(w http.ResponseWriter, r *http.Request) (core.ConvertRequest, error) {
	upload, err := s.parseUpload(w, r)
	if err != nil {
		return core.ConvertRequest{}, err
	}

	mapping, err := core.ParseFieldMapping(r.FormValue("mapping"))
	if err != nil {
		return core.ConvertRequest{}, err
	}
	phones, err := core.ParsePhoneDescriptors(r.FormValue("phones"))
	if err != nil {
		return core.ConvertRequest{}, err
	}

	return core.ConvertRequest{
		File:        upload,
		Mapping:     mapping,
		Phones:      phones,
		GroupColumn: r.FormValue("group"),
		NameLabel:   r.FormValue("label"),
	}, nil
}
