package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/league"
)

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.leagueService.ListLeagues(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(ctx, l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateLeague")
	defer span.End()

	var req createLeagueRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.leagueService.CreateLeague(ctx, req.Name, req.AdminUserID, req.IsPrivate)
	if err != nil {
		h.logger.WarnContext(ctx, "create league failed", "name", req.Name, "admin_user_id", req.AdminUserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, leagueToDTO(ctx, created))
}

func (h *Handler) JoinLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinLeague")
	defer span.End()

	var req joinLeagueRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	joined, err := h.leagueService.JoinLeague(ctx, req.UserID, req.League)
	if err != nil {
		h.logger.WarnContext(ctx, "join league failed", "user_id", req.UserID, "league", req.League, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(ctx, joined))
}

func (h *Handler) ListUserLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUserLeagues")
	defer span.End()

	userID, err := parseUserIDPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagues, err := h.leagueService.ListUserLeagues(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "list user leagues failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(ctx, l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListLeagueMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueMembers")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))

	members, err := h.leagueService.GetLeagueMembers(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list league members failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueMemberDTO, 0, len(members))
	for _, m := range members {
		items = append(items, leagueMemberDTO{
			UserID:         m.UserID,
			Role:           string(m.Role),
			PointsInLeague: m.PointsInLeague,
			JoinedAt:       m.JoinedAt.UTC().Format(time.RFC3339),
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type createLeagueRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	AdminUserID int64  `json:"adminUserId" validate:"required,gt=0"`
	IsPrivate   bool   `json:"isPrivate"`
}

type joinLeagueRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
	// League accepts either a league id or a league name.
	League string `json:"league" validate:"required,max=100"`
}

type leagueMemberDTO struct {
	UserID         int64  `json:"userId"`
	Role           string `json:"role"`
	PointsInLeague int    `json:"pointsInLeague"`
	JoinedAt       string `json:"joinedAt"`
}

type leagueDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AdminUserID int64  `json:"adminUserId"`
	IsPrivate   bool   `json:"isPrivate"`
	CreatedAt   string `json:"createdAt"`
}

func leagueToDTO(ctx context.Context, l league.League) leagueDTO {
	ctx, span := startSpan(ctx, "httpapi.leagueToDTO")
	defer span.End()

	return leagueDTO{
		ID:          l.ID,
		Name:        l.Name,
		AdminUserID: l.AdminUserID,
		IsPrivate:   l.IsPrivate,
		CreatedAt:   l.CreatedAt.UTC().Format(time.RFC3339),
	}
}
