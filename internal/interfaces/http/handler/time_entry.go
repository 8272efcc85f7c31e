package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	timesheetapp "github.com/invoicehub/backend/internal/application/timesheet"
)

// TimeEntryHandler handles time tracking API endpoints
type TimeEntryHandler struct {
	BaseHandler
	timeEntryService *timesheetapp.TimeEntryService
}

// NewTimeEntryHandler creates a new TimeEntryHandler
func NewTimeEntryHandler(timeEntryService *timesheetapp.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{
		timeEntryService: timeEntryService,
	}
}

// MarkEntryBillableRequest ties a time entry to a customer at a rate
type MarkEntryBillableRequest struct {
	CustomerID uuid.UUID       `json:"customer_id" binding:"required"`
	HourlyRate decimal.Decimal `json:"hourly_rate" binding:"required"`
}

// HoursSummaryQuery bounds the tracked hours total
type HoursSummaryQuery struct {
	DateFrom time.Time `form:"date_from" binding:"required" time_format:"2006-01-02"`
	DateTo   time.Time `form:"date_to" binding:"required" time_format:"2006-01-02"`
}

// Create records a new time entry
func (h *TimeEntryHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var req timesheetapp.CreateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.timeEntryService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns a single time entry by ID
func (h *TimeEntryHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	entryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid time entry ID")
		return
	}

	resp, err := h.timeEntryService.GetByID(c.Request.Context(), tenantID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns a paginated list of time entries
func (h *TimeEntryHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var filter timesheetapp.TimeEntryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.timeEntryService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListBillableUninvoiced lists a customer's billable entries that have
// not been pulled onto an invoice yet
func (h *TimeEntryHandler) ListBillableUninvoiced(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	customerID, err := uuid.Parse(c.Query("customer_id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID")
		return
	}

	entries, err := h.timeEntryService.ListBillableUninvoiced(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// Summary returns total tracked hours over a date range
func (h *TimeEntryHandler) Summary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	var query HoursSummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	hours, err := h.timeEntryService.SumHours(c.Request.Context(), tenantID, query.DateFrom, query.DateTo)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"hours": hours})
}

// Update updates a time entry's details
func (h *TimeEntryHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	entryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid time entry ID")
		return
	}

	var req timesheetapp.UpdateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.timeEntryService.Update(c.Request.Context(), tenantID, entryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// MarkBillable ties a time entry to a customer at an hourly rate
func (h *TimeEntryHandler) MarkBillable(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	entryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid time entry ID")
		return
	}

	var req MarkEntryBillableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.timeEntryService.MarkBillable(c.Request.Context(), tenantID, entryID, req.CustomerID, req.HourlyRate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes a time entry that was never invoiced
func (h *TimeEntryHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant ID")
		return
	}

	entryID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid time entry ID")
		return
	}

	if err := h.timeEntryService.Delete(c.Request.Context(), tenantID, entryID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers all time entry routes
func (h *TimeEntryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	entries := rg.Group("/time-entries")
	{
		entries.GET("", h.List)
		entries.GET("/summary", h.Summary)
		entries.GET("/billable-uninvoiced", h.ListBillableUninvoiced)
		entries.GET("/:id", h.Get)
		entries.POST("", h.Create)
		entries.PUT("/:id", h.Update)
		entries.POST("/:id/mark-billable", h.MarkBillable)
		entries.DELETE("/:id", h.Delete)
	}
}
