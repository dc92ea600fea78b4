package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/predictleague/prediction-league/internal/usecase"
)

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	weekly, err := parseBoolQuery(r, "weekly")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := parseLimitQuery(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.leaderboardService.GetLeaderboard(ctx, usecase.LeaderboardQuery{
		Weekly: weekly,
		Limit:  limit,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "get leaderboard failed", "weekly", weekly, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(ctx, rows))
}

func (h *Handler) GetLeagueLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueLeaderboard")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	limit, err := parseLimitQuery(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.leaderboardService.GetLeaderboard(ctx, usecase.LeaderboardQuery{
		LeagueID: leagueID,
		Limit:    limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "get league leaderboard failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(ctx, rows))
}

type leaderboardRowDTO struct {
	Rank        int    `json:"rank"`
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Points      int    `json:"points"`
}

func leaderboardToDTO(ctx context.Context, rows []usecase.LeaderboardRow) []leaderboardRowDTO {
	ctx, span := startSpan(ctx, "httpapi.leaderboardToDTO")
	defer span.End()

	items := make([]leaderboardRowDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, leaderboardRowDTO{
			Rank:        row.Rank,
			UserID:      row.UserID,
			Username:    row.Username,
			DisplayName: row.DisplayName,
			Points:      row.Points,
		})
	}
	return items
}

func parseBoolQuery(r *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

func parseLimitQuery(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
