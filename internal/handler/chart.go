package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pitchroast/api/pkg/chart"
	"github.com/pitchroast/api/pkg/response"
)

type ChartHandler struct{}

func NewChartHandler() *ChartHandler {
	return &ChartHandler{}
}

// Get handles GET /api/chart?file=<name>.
// Returns the reality-check slices for a file name, or the default set
// when no name is given. The data is a seeded placeholder, not derived
// from deck content.
func (h *ChartHandler) Get(c *fiber.Ctx) error {
	fileName := c.Query("file")
	if fileName == "" {
		return response.OK(c, chart.Default())
	}
	return response.OK(c, chart.Generate(fileName))
}
