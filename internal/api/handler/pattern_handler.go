package handler

import (
	"encoding/json"
	"net/http"

	"code_practice/internal/api/middleware"
	"code_practice/internal/app/policy"
	"code_practice/internal/app/service"
	"code_practice/internal/common"

	"github.com/go-chi/chi/v5"
)

type PatternHandler struct {
	patternService *service.PatternService
}

func NewPatternHandler(ps *service.PatternService) *PatternHandler {
	return &PatternHandler{patternService: ps}
}

func (h *PatternHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.Require(policy.ActionList, policy.ResourcePattern)).Get("/", h.listPatterns)
	r.With(middleware.Require(policy.ActionRead, policy.ResourcePattern)).Get("/{patternID}", h.getPattern)
	r.With(middleware.Require(policy.ActionCreate, policy.ResourcePattern)).Post("/", h.createPattern)
	r.With(middleware.Require(policy.ActionUpdate, policy.ResourcePattern)).Put("/{patternID}", h.updatePattern)
	r.With(middleware.Require(policy.ActionDelete, policy.ResourcePattern)).Delete("/{patternID}", h.deletePattern)
}

func (h *PatternHandler) listPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.patternService.ListPatterns(r.Context())
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, patterns)
}

func (h *PatternHandler) getPattern(w http.ResponseWriter, r *http.Request) {
	pattern, err := h.patternService.GetPattern(r.Context(), chi.URLParam(r, "patternID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, pattern)
}

func (h *PatternHandler) createPattern(w http.ResponseWriter, r *http.Request) {
	var req service.PatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	pattern, err := h.patternService.CreatePattern(r.Context(), middleware.CallerFromContext(r.Context()), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, pattern)
}

func (h *PatternHandler) updatePattern(w http.ResponseWriter, r *http.Request) {
	var req service.PatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	pattern, err := h.patternService.UpdatePattern(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "patternID"), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, pattern)
}

func (h *PatternHandler) deletePattern(w http.ResponseWriter, r *http.Request) {
	err := h.patternService.DeletePattern(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "patternID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Pattern deleted successfully")
}
