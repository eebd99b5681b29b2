package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/akashstwt/scraper-backend/internal/common"
)

// maxUploadBytes caps the uploaded spreadsheet size
const maxUploadBytes = 16 << 20

var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
}

// JobSubmitter accepts a validated upload and returns a pollable job id
type JobSubmitter interface {
	Submit(fileData []byte, recipient string) (string, error)
}

// ScrapeHandler accepts spreadsheet uploads and starts scrape jobs
type ScrapeHandler struct {
	submitter JobSubmitter
	validate  *validator.Validate
	logger    arbor.ILogger
}

func NewScrapeHandler(submitter JobSubmitter) *ScrapeHandler {
	return &ScrapeHandler{
		submitter: submitter,
		validate:  validator.New(),
		logger:    common.GetLogger(),
	}
}

// SubmitHandler handles POST /api/scrape: a multipart form with the code
// spreadsheet under "file" and the delivery address under "email". The job
// is registered only after every validation passes, so a rejected request
// never leaves a job behind.
func (h *ScrapeHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		WriteError(w, http.StatusBadRequest, "No email provided")
		return
	}
	if err := h.validate.Var(email, "email"); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		WriteError(w, http.StatusBadRequest, "No file selected")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		WriteError(w, http.StatusBadRequest, "Invalid file type. Only .xlsx and .xls allowed")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	jobID, err := h.submitter.Submit(data, email)
	if err != nil {
		h.logger.Error().Err(err).Msg("Job submission failed")
		WriteError(w, http.StatusInternalServerError, "Failed to start scraping job")
		return
	}

	h.logger.Info().
		Str("job_id", jobID).
		Str("filename", header.Filename).
		Int("bytes", len(data)).
		Msg("Upload accepted")

	WriteJSON(w, http.StatusOK, map[string]string{
		"job_id":  jobID,
		"message": "Scraping job started",
	})
}
