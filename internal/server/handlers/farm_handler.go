package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
	"github.com/nahidfarms/poultrypro/internal/service/insights"
	"github.com/nahidfarms/poultrypro/internal/service/ledger"
	"github.com/nahidfarms/poultrypro/internal/service/report"
)

// FarmHandler adapts the ledger engine and its collaborators to HTTP.
type FarmHandler struct {
	ledger   *ledger.Service
	insights *insights.Service
	reports  *report.Service
	logger   *zap.Logger
}

// NewFarmHandler constructs the HTTP handler adapter.
func NewFarmHandler(ledgerSvc *ledger.Service, insightsSvc *insights.Service, reportSvc *report.Service, logger *zap.Logger) *FarmHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FarmHandler{
		ledger:   ledgerSvc,
		insights: insightsSvc,
		reports:  reportSvc,
		logger:   logger,
	}
}

// State returns the full farm state snapshot.
func (h *FarmHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Snapshot())
}

// Dashboard returns the aggregate statistics.
func (h *FarmHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledger.Stats())
}

type addTransactionRequest struct {
	Date        string                 `json:"date" binding:"required"`
	Type        models.TransactionType `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Category    models.Category        `json:"category" binding:"required"`
	Amount      decimal.Decimal        `json:"amount"`
	Description string                 `json:"description"`
	FlockID     string                 `json:"flock_id"`
}

// AddTransaction records a new ledger entry.
func (h *FarmHandler) AddTransaction(c *gin.Context) {
	var req addTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid transaction payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tx, err := h.ledger.AddTransaction(c.Request.Context(), ledger.TransactionInput{
		Date:        req.Date,
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
		FlockID:     req.FlockID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// DeleteTransaction removes a ledger entry; unknown ids are ignored.
func (h *FarmHandler) DeleteTransaction(c *gin.Context) {
	h.ledger.DeleteTransaction(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

type createFlockRequest struct {
	BatchName    string `json:"batch_name" binding:"required"`
	Breed        string `json:"breed"`
	StartDate    string `json:"start_date" binding:"required"`
	InitialCount int    `json:"initial_count"`
}

// CreateFlock starts a new batch.
func (h *FarmHandler) CreateFlock(c *gin.Context) {
	var req createFlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid flock payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	flock, err := h.ledger.CreateFlock(c.Request.Context(), ledger.FlockInput{
		BatchName:    req.BatchName,
		Breed:        req.Breed,
		StartDate:    req.StartDate,
		InitialCount: req.InitialCount,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, flock)
}

type updateFlockRequest struct {
	BatchName *string `json:"batch_name"`
	Breed     *string `json:"breed"`
	StartDate *string `json:"start_date"`
}

// UpdateFlock merges partial fields into a flock. Counts and logs are not
// reachable through this endpoint.
func (h *FarmHandler) UpdateFlock(c *gin.Context) {
	var req updateFlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid flock patch", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	flock, err := h.ledger.UpdateFlock(c.Request.Context(), c.Param("id"), ledger.FlockPatch{
		BatchName: req.BatchName,
		Breed:     req.Breed,
		StartDate: req.StartDate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, flock)
}

type overrideCountRequest struct {
	CurrentCount int `json:"current_count"`
}

// OverrideCount administratively corrects a flock's live count.
func (h *FarmHandler) OverrideCount(c *gin.Context) {
	var req overrideCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid count override", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	flock, err := h.ledger.OverrideCount(c.Request.Context(), c.Param("id"), req.CurrentCount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, flock)
}

// DeleteFlock removes a flock and all of its logs.
func (h *FarmHandler) DeleteFlock(c *gin.Context) {
	if err := h.ledger.DeleteFlock(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type recordWeightRequest struct {
	Date          string  `json:"date" binding:"required"`
	AverageWeight float64 `json:"average_weight"`
	SampleSize    int     `json:"sample_size"`
}

// RecordWeight appends a weighing session.
func (h *FarmHandler) RecordWeight(c *gin.Context) {
	var req recordWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid weight payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	log, err := h.ledger.RecordWeight(c.Request.Context(), c.Param("id"), ledger.WeightInput{
		Date:          req.Date,
		AverageWeight: req.AverageWeight,
		SampleSize:    req.SampleSize,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, log)
}

type recordMortalityRequest struct {
	Date   string `json:"date" binding:"required"`
	Count  int    `json:"count"`
	Reason string `json:"reason"`
}

// RecordMortality appends a mortality incident and adjusts the live count.
func (h *FarmHandler) RecordMortality(c *gin.Context) {
	var req recordMortalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid mortality payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	log, err := h.ledger.RecordMortality(c.Request.Context(), c.Param("id"), ledger.MortalityInput{
		Date:   req.Date,
		Count:  req.Count,
		Reason: req.Reason,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, log)
}

type recordFeedRequest struct {
	Date   string          `json:"date" binding:"required"`
	Amount float64         `json:"amount"`
	Unit   models.FeedUnit `json:"unit" binding:"required"`
}

// RecordFeed appends a feed entry and reconciles inventory.
func (h *FarmHandler) RecordFeed(c *gin.Context) {
	var req recordFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid feed payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	log, err := h.ledger.RecordFeed(c.Request.Context(), c.Param("id"), ledger.FeedInput{
		Date:   req.Date,
		Amount: req.Amount,
		Unit:   req.Unit,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, log)
}

type inventoryRequest struct {
	Name            string          `json:"name" binding:"required"`
	Category        models.Category `json:"category" binding:"required,oneof=FEED MEDICINE"`
	CurrentQuantity float64         `json:"current_quantity"`
	Unit            string          `json:"unit"`
	MinThreshold    float64         `json:"min_threshold"`
}

// AddItem registers a new inventory line.
func (h *FarmHandler) AddItem(c *gin.Context) {
	var req inventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid inventory payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.ledger.AddItem(c.Request.Context(), ledger.InventoryInput{
		Name:            req.Name,
		Category:        req.Category,
		CurrentQuantity: req.CurrentQuantity,
		Unit:            req.Unit,
		MinThreshold:    req.MinThreshold,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

type updateItemRequest struct {
	Name            *string          `json:"name"`
	Category        *models.Category `json:"category"`
	CurrentQuantity *float64         `json:"current_quantity"`
	Unit            *string          `json:"unit"`
	MinThreshold    *float64         `json:"min_threshold"`
}

// UpdateItem merges partial fields into an inventory line.
func (h *FarmHandler) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid inventory patch", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.ledger.UpdateItem(c.Request.Context(), c.Param("id"), ledger.ItemPatch{
		Name:            req.Name,
		Category:        req.Category,
		CurrentQuantity: req.CurrentQuantity,
		Unit:            req.Unit,
		MinThreshold:    req.MinThreshold,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an inventory line.
func (h *FarmHandler) DeleteItem(c *gin.Context) {
	if err := h.ledger.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Undo restores the state before the most recent delete.
func (h *FarmHandler) Undo(c *gin.Context) {
	if err := h.ledger.Undo(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ledger.Snapshot())
}

// RefreshInsights requests a fresh AI analysis of the current books.
func (h *FarmHandler) RefreshInsights(c *gin.Context) {
	result := h.insights.Refresh(c.Request.Context(), h.ledger.Snapshot())
	c.JSON(http.StatusOK, result)
}

// LatestInsights returns the most recently generated analysis.
func (h *FarmHandler) LatestInsights(c *gin.Context) {
	result, ok := h.insights.Latest()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no insights generated yet"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// BatchReport renders the per-flock statement. format=text yields the
// printable document; export=true additionally appends it to the configured
// spreadsheet.
func (h *FarmHandler) BatchReport(c *gin.Context) {
	snapshot := h.ledger.Snapshot()

	var flock *models.Flock
	for i := range snapshot.Flocks {
		if snapshot.Flocks[i].ID == c.Param("id") {
			flock = &snapshot.Flocks[i]
			break
		}
	}
	if flock == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "flock not found"})
		return
	}

	rep := report.Build(*flock, snapshot.Transactions)

	if c.Query("export") == "true" {
		if err := h.reports.Export(c.Request.Context(), rep); err != nil {
			h.logger.Error("failed exporting batch report", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "unable to export report"})
			return
		}
	}

	if c.Query("format") == "text" {
		c.String(http.StatusOK, report.Render(rep))
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *FarmHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrFlockNotFound), errors.Is(err, ledger.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrNothingToUndo):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("unexpected ledger failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
