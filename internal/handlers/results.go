package handlers

import (
	"net/http"

	"surveyhub/internal/models"
	"surveyhub/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type ResultsHandler struct {
	log *zap.Logger
}

func NewResultsHandler(log *zap.Logger) *ResultsHandler {
	return &ResultsHandler{log: log}
}

// Show returns the tally: per question, a response count for every defined
// choice, zero included. The view-results grant was checked in middleware.
func (h *ResultsHandler) Show(c *gin.Context) {
	survey := c.MustGet("survey").(*models.Survey)

	results, err := repository.TallySurveyResults(c.Request.Context(), survey.ID)
	if err != nil {
		h.log.Error("Failed to tally survey results", zap.Error(err), zap.Uint("surveyID", survey.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"survey":    gin.H{"id": survey.ID, "title": survey.Title},
		"questions": results,
	})
}

// ShowChart renders the tally as one bar chart per question.
func (h *ResultsHandler) ShowChart(c *gin.Context) {
	survey := c.MustGet("survey").(*models.Survey)

	results, err := repository.TallySurveyResults(c.Request.Context(), survey.ID)
	if err != nil {
		h.log.Error("Failed to tally survey results", zap.Error(err), zap.Uint("surveyID", survey.ID))
		c.String(http.StatusInternalServerError, "Failed to load results")
		return
	}

	page := components.NewPage()
	page.PageTitle = survey.Title
	for _, result := range results {
		page.AddCharts(generateQuestionChart(result))
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(c.Writer); err != nil {
		h.log.Error("Failed to render results chart", zap.Error(err), zap.Uint("surveyID", survey.ID))
	}
}

func generateQuestionChart(result repository.QuestionResult) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: result.Text,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	labels := make([]string, 0, len(result.Choices))
	items := make([]opts.BarData, 0, len(result.Choices))
	for _, choice := range result.Choices {
		labels = append(labels, choice.Text)
		items = append(items, opts.BarData{Value: choice.Responses})
	}

	bar.SetXAxis(labels).AddSeries("Responses", items)
	return bar
}
