package handler

import (
	"net/http"

	"code_practice/internal/api/middleware"
	"code_practice/internal/app/policy"
	"code_practice/internal/app/service"
	"code_practice/internal/common"

	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(ss *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: ss}
}

func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.Require(policy.ActionRead, policy.ResourceStats)).Get("/user/{userID}", h.userStats)
	r.With(middleware.Require(policy.ActionRead, policy.ResourceLeaderboard)).Get("/leaderboard", h.leaderboard)
}

func (h *StatsHandler) userStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.GetUserStats(r.Context(), middleware.CallerFromContext(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *StatsHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.statsService.GetLeaderboard(r.Context(), middleware.CallerFromContext(r.Context()))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, board)
}
