package httpapi

import (
	"net/http"

	"github.com/predictleague/prediction-league/internal/usecase"
)

func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPrediction")
	defer span.End()

	var req submitPredictionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	p, err := h.predictionService.Submit(ctx, usecase.SubmitInput{
		UserID:       req.UserID,
		Username:     req.Username,
		DisplayName:  req.DisplayName,
		MarketTicker: req.MarketTicker,
		ChoiceYes:    req.ChoiceYes,
		Confidence:   req.Confidence,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit prediction failed",
			"user_id", req.UserID, "market", req.MarketTicker, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, predictionToDTO(ctx, p))
}

type submitPredictionRequest struct {
	UserID       int64  `json:"userId" validate:"required,gt=0"`
	Username     string `json:"username" validate:"max=64"`
	DisplayName  string `json:"displayName" validate:"required,max=128"`
	MarketTicker string `json:"marketTicker" validate:"required,max=64"`
	ChoiceYes    bool   `json:"choiceYes"`
	Confidence   *int   `json:"confidence" validate:"omitempty,min=0,max=100"`
}
