package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"code_practice/internal/api/middleware"
	"code_practice/internal/app/policy"
	"code_practice/internal/app/service"
	"code_practice/internal/common"
	"code_practice/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

const screenshotField = "screenshot"

type SubmissionHandler struct {
	submissionService *service.SubmissionService
	maxUploadBytes    int64
}

func NewSubmissionHandler(ss *service.SubmissionService, maxUploadBytes int64) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss, maxUploadBytes: maxUploadBytes}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.Require(policy.ActionList, policy.ResourceSubmission)).Get("/", h.listSubmissions)
	r.With(middleware.Require(policy.ActionCreate, policy.ResourceSubmission)).Post("/", h.createSubmission)
	r.With(middleware.Require(policy.ActionRead, policy.ResourceSubmission)).Get("/{submissionID}", h.getSubmission)
	r.With(middleware.Require(policy.ActionUpdate, policy.ResourceSubmission)).Put("/{submissionID}", h.updateSubmission)
	r.With(middleware.Require(policy.ActionDelete, policy.ResourceSubmission)).Delete("/{submissionID}", h.deleteSubmission)
	r.With(middleware.Require(policy.ActionReview, policy.ResourceSubmission)).Patch("/{submissionID}/status", h.updateStatus)
}

func (h *SubmissionHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.SubmissionFilter{
		UserID:    q.Get("user_id"),
		ProblemID: q.Get("problem_id"),
		PatternID: q.Get("pattern_id"),
		Status:    model.SubmissionStatus(q.Get("status")),
	}

	subs, err := h.submissionService.ListSubmissions(r.Context(), middleware.CallerFromContext(r.Context()), filter)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, subs)
}

func (h *SubmissionHandler) getSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.submissionService.GetSubmission(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "submissionID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sub)
}

// parseForm reads a multipart body capped at the upload limit.
func (h *SubmissionHandler) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("upload exceeds %d bytes: %w", h.maxUploadBytes, common.ErrBadRequest)
		}
		return fmt.Errorf("invalid multipart form: %w", common.ErrBadRequest)
	}
	return nil
}

// screenshot returns the uploaded file, or nil when the field is absent.
// The caller closes the returned file.
func (h *SubmissionHandler) screenshot(r *http.Request) (*service.Screenshot, multipart.File, error) {
	file, header, err := r.FormFile(screenshotField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("invalid screenshot upload: %w", common.ErrBadRequest)
	}
	if header.Size > h.maxUploadBytes {
		file.Close()
		return nil, nil, fmt.Errorf("screenshot exceeds %d bytes: %w", h.maxUploadBytes, common.ErrBadRequest)
	}

	// Sniff the type rather than trust the client's header.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		file.Close()
		return nil, nil, fmt.Errorf("reading screenshot: %w", err)
	}
	head = head[:n]
	contentType := http.DetectContentType(head)

	return &service.Screenshot{
		Filename:    header.Filename,
		ContentType: contentType,
		Body:        io.MultiReader(bytes.NewReader(head), file),
	}, file, nil
}

func formValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func (h *SubmissionHandler) createSubmission(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	shot, file, err := h.screenshot(r)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	req := service.CreateSubmissionRequest{
		ProblemID:  r.FormValue("problem_id"),
		Notes:      formValue(r, "notes"),
		Screenshot: shot,
	}
	sub, err := h.submissionService.CreateSubmission(r.Context(), middleware.CallerFromContext(r.Context()), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, sub)
}

// updateSubmission accepts multipart (notes and optional screenshot) or a JSON {"notes": ...} body.
func (h *SubmissionHandler) updateSubmission(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSubmissionRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := h.parseForm(w, r); err != nil {
			common.RespondWithErr(w, err)
			return
		}
		defer r.MultipartForm.RemoveAll()

		shot, file, err := h.screenshot(r)
		if err != nil {
			common.RespondWithErr(w, err)
			return
		}
		if file != nil {
			defer file.Close()
		}
		req.Notes = formValue(r, "notes")
		req.Screenshot = shot
	} else {
		var body struct {
			Notes *string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}
		req.Notes = body.Notes
	}

	sub, err := h.submissionService.UpdateSubmission(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "submissionID"), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) deleteSubmission(w http.ResponseWriter, r *http.Request) {
	err := h.submissionService.DeleteSubmission(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "submissionID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Submission deleted successfully")
}

func (h *SubmissionHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req service.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	sub, err := h.submissionService.ReviewSubmission(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "submissionID"), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sub)
}
