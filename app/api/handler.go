package api

import (
	"time"

	"pdfrag/app/agent"
	"pdfrag/types"

	"github.com/gofiber/fiber/v2"
)

type AskHandler struct {
	agent *agent.Agent
}

func NewAskHandler(a *agent.Agent) *AskHandler {
	return &AskHandler{
		agent: a,
	}
}

// HandleAsk answers one question from the persisted index. Extraction and
// index I/O never run here; this path only reads.
func (h *AskHandler) HandleAsk(c *fiber.Ctx) error {
	var params types.AskParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return types.NewValidationError(errors)
	}

	answer, err := h.agent.Ask(c.Context(), params.Question, params.TopK)
	if err != nil {
		return err
	}

	return c.JSON(&types.AskResponse{
		Answer:    answer.Text,
		Sources:   answer.Sources,
		Timestamp: time.Now(),
	})
}
