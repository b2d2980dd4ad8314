package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"smart-price-tracker/internal/scraper"
	"smart-price-tracker/internal/tracking"
	"smart-price-tracker/internal/types"
)

// Tracking is the part of tracking.Tracker the handlers use.
type Tracking interface {
	TrackProduct(ctx context.Context, url string, threshold float64) (types.TrackedItem, error)
	List(ctx context.Context) []types.TrackedItem
	History(ctx context.Context, url string) ([]types.PricePoint, error)
}

type Handler struct {
	tracker Tracking
}

func NewHandler(tracker Tracking) *Handler {
	return &Handler{tracker: tracker}
}

// Router wires the handlers under /api.
func Router(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.POST("/track", h.TrackProduct)
		api.GET("/tracked", h.ListTracked)
		api.GET("/history", h.GetPriceHistory)
		api.POST("/extract", h.ExtractProduct)
	}
	return r
}

type trackInput struct {
	URL       string   `json:"url"`
	Threshold *float64 `json:"threshold"`
}

type extractInput struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

func (h *Handler) TrackProduct(c *gin.Context) {
	var input trackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if input.Threshold == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold: is required"})
		return
	}

	url := strings.TrimSpace(input.URL)
	if err := tracking.Validate(url, *input.Threshold); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.tracker.TrackProduct(c.Request.Context(), url, *input.Threshold)
	if err != nil {
		log.Errorf("TrackProduct: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store tracked product"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) ListTracked(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.List(c.Request.Context()))
}

func (h *Handler) GetPriceHistory(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	history, err := h.tracker.History(c.Request.Context(), url)
	if err != nil {
		log.Errorf("GetPriceHistory: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch history"})
		return
	}
	if history == nil {
		history = []types.PricePoint{}
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handler) ExtractProduct(c *gin.Context) {
	var input extractInput
	if err := c.ShouldBindJSON(&input); err != nil || input.URL == "" || input.HTML == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url and html are required"})
		return
	}

	product, err := scraper.Extract(input.URL, strings.NewReader(input.HTML))
	if err != nil {
		var extractionErr *scraper.ExtractionError
		if errors.As(err, &extractionErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": extractionErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "extraction failed"})
		return
	}
	c.JSON(http.StatusOK, product)
}
