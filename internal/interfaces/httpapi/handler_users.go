package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/predictleague/prediction-league/internal/domain/achievement"
	"github.com/predictleague/prediction-league/internal/domain/prediction"
	"github.com/predictleague/prediction-league/internal/domain/user"
	"github.com/predictleague/prediction-league/internal/usecase"
)

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterUser")
	defer span.End()

	var req registerUserRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	u, err := h.userService.GetOrCreate(ctx, req.ID, req.Username, req.DisplayName)
	if err != nil {
		h.logger.WarnContext(ctx, "get or create user failed", "user_id", req.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, userToDTO(ctx, u))
}

func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUserStats")
	defer span.End()

	userID, err := parseUserIDPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.predictionService.GetUserStats(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "get user stats failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	recent := make([]predictionDTO, 0, len(stats.Recent))
	for _, p := range stats.Recent {
		recent = append(recent, predictionToDTO(ctx, p))
	}

	writeSuccess(ctx, w, http.StatusOK, userStatsDTO{
		User:     userToDTO(ctx, stats.User),
		Accuracy: stats.Accuracy,
		Recent:   recent,
		Week: weekTallyDTO{
			WeekStart: stats.WeekTally.WeekStart.UTC().Format("2006-01-02"),
			Predicted: stats.WeekTally.Predicted,
			Resolved:  stats.WeekTally.Resolved,
			Correct:   stats.WeekTally.Correct,
		},
	})
}

func (h *Handler) ListUserPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUserPredictions")
	defer span.End()

	userID, err := parseUserIDPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := parseLimitQuery(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	predictions, err := h.predictionService.ListByUser(ctx, userID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list user predictions failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]predictionDTO, 0, len(predictions))
	for _, p := range predictions {
		items = append(items, predictionToDTO(ctx, p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListUserAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUserAchievements")
	defer span.End()

	userID, err := parseUserIDPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	unlocks, err := h.achievementService.ListByUser(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "list user achievements failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]achievementDTO, 0, len(unlocks))
	for _, unlock := range unlocks {
		items = append(items, achievementToDTO(ctx, unlock))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func parseUserIDPath(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("userID"))
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: user id must be a positive integer", usecase.ErrInvalidInput)
	}
	return userID, nil
}

type registerUserRequest struct {
	ID          int64  `json:"id" validate:"required,gt=0"`
	Username    string `json:"username" validate:"max=64"`
	DisplayName string `json:"displayName" validate:"required,max=128"`
}

type userDTO struct {
	ID                 int64  `json:"id"`
	Username           string `json:"username"`
	DisplayName        string `json:"displayName"`
	TotalPoints        int    `json:"totalPoints"`
	WeeklyPoints       int    `json:"weeklyPoints"`
	CurrentStreak      int    `json:"currentStreak"`
	LongestStreak      int    `json:"longestStreak"`
	PredictionsMade    int    `json:"predictionsMade"`
	PredictionsCorrect int    `json:"predictionsCorrect"`
	ContrarianWins     int    `json:"contrarianWins"`
	SportsCorrect      int    `json:"sportsCorrect"`
	CreatedAt          string `json:"createdAt"`
}

type userStatsDTO struct {
	User     userDTO         `json:"user"`
	Accuracy float64         `json:"accuracy"`
	Recent   []predictionDTO `json:"recent"`
	Week     weekTallyDTO    `json:"week"`
}

type weekTallyDTO struct {
	WeekStart string `json:"weekStart"`
	Predicted int    `json:"predicted"`
	Resolved  int    `json:"resolved"`
	Correct   int    `json:"correct"`
}

type predictionDTO struct {
	ID           string  `json:"id"`
	UserID       int64   `json:"userId"`
	MarketTicker string  `json:"marketTicker"`
	ChoiceYes    bool    `json:"choiceYes"`
	Confidence   int     `json:"confidence"`
	SidePrice    float64 `json:"sidePrice"`
	PointsEarned int     `json:"pointsEarned"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

type achievementDTO struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Emoji       string `json:"emoji"`
	EarnedAt    string `json:"earnedAt"`
}

func userToDTO(ctx context.Context, u user.User) userDTO {
	ctx, span := startSpan(ctx, "httpapi.userToDTO")
	defer span.End()

	return userDTO{
		ID:                 u.ID,
		Username:           u.Username,
		DisplayName:        u.DisplayName,
		TotalPoints:        u.TotalPoints,
		WeeklyPoints:       u.WeeklyPoints,
		CurrentStreak:      u.CurrentStreak,
		LongestStreak:      u.LongestStreak,
		PredictionsMade:    u.PredictionsMade,
		PredictionsCorrect: u.PredictionsCorrect,
		ContrarianWins:     u.ContrarianWins,
		SportsCorrect:      u.SportsCorrect,
		CreatedAt:          u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func predictionToDTO(ctx context.Context, p prediction.Prediction) predictionDTO {
	ctx, span := startSpan(ctx, "httpapi.predictionToDTO")
	defer span.End()

	return predictionDTO{
		ID:           p.ID,
		UserID:       p.UserID,
		MarketTicker: p.MarketTicker,
		ChoiceYes:    p.ChoiceYes,
		Confidence:   p.Confidence,
		SidePrice:    p.SidePrice,
		PointsEarned: p.PointsEarned,
		CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func achievementToDTO(ctx context.Context, unlock achievement.Unlock) achievementDTO {
	ctx, span := startSpan(ctx, "httpapi.achievementToDTO")
	defer span.End()

	dto := achievementDTO{
		Key:      string(unlock.Key),
		EarnedAt: unlock.EarnedAt.UTC().Format(time.RFC3339),
	}
	if def, ok := achievement.Lookup(unlock.Key); ok {
		dto.Title = def.Title
		dto.Description = def.Description
		dto.Emoji = def.Emoji
	}
	return dto
}
