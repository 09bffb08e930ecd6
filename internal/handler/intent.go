// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines the buyer intent endpoint: free text in, the
// structured fields of a bid out, plus clarification questions for
// whatever the model could not determine.
package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ticket-marketplace/internal/proposal"
)

// IntentHandler bundles dependencies for the buyer intent endpoint.
type IntentHandler struct {
	Extractor *proposal.OpenRouter
	Logger    *zap.Logger
}

func NewIntentHandler(x *proposal.OpenRouter, logger *zap.Logger) *IntentHandler {
	return &IntentHandler{Extractor: x, Logger: logger}
}

type intentReq struct {
	Query string `json:"query"`
}

type questionResp struct {
	Field    string `json:"field"`
	Question string `json:"question"`
}

// Extract parses the buyer's query into bid fields. Missing required
// fields are returned together with the canonical follow-up question
// for each so the client can ask the buyer directly.
func (h *IntentHandler) Extract(c echo.Context) error {
	var req intentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query required"})
	}

	in, err := h.Extractor.ExtractIntent(c.Request().Context(), req.Query)
	if err != nil {
		h.Logger.Warn("intent extraction failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "intent extraction failed"})
	}

	questions := make([]questionResp, 0, len(in.Missing))
	for _, field := range in.Missing {
		if q := proposal.ClarificationQuestion(field); q != "" {
			questions = append(questions, questionResp{Field: field, Question: q})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"extracted": in.Extracted,
		"missing":   in.Missing,
		"questions": questions,
	})
}
