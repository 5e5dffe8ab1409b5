package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/madadhq/invoice-financing/internal/application/port"
	"github.com/madadhq/invoice-financing/internal/application/service"
	"github.com/madadhq/invoice-financing/internal/domain/entity"
	"github.com/madadhq/invoice-financing/internal/errs"
	"github.com/madadhq/invoice-financing/internal/report"
)

// FileStore persists an uploaded document and returns its public URL
type FileStore = port.FileStore

// Handlers contains the application HTTP request handlers
type Handlers struct {
	financingService service.FinancingService
	auditService     service.AuditTrailService
	fileStore        FileStore
	exporter         *report.ApplicationExporter
	debug            bool
	logger           Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	financingService service.FinancingService,
	auditService service.AuditTrailService,
	fileStore FileStore,
	exporter *report.ApplicationExporter,
	debug bool,
	logger Logger,
) *Handlers {
	return &Handlers{
		financingService: financingService,
		auditService:     auditService,
		fileStore:        fileStore,
		exporter:         exporter,
		debug:            debug,
		logger:           logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// respondError maps a service error onto its fixed status code. Internal
// errors are masked outside debug mode.
func respondError(c *gin.Context, debug bool, err error) {
	status := errs.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError && !debug {
		message = "internal server error"
	}
	c.JSON(status, Response{Success: false, Error: message})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// SubmitApplication handles POST /application. The MSME sends a
// multipart form with creditScore, monthlyAverageTransaction, and up to
// six document files.
func (h *Handlers) SubmitApplication(c *gin.Context) {
	principal, _ := principalFrom(c)

	creditScore, err := strconv.Atoi(c.PostForm("creditScore"))
	if err != nil {
		respondError(c, h.debug, errs.Validation("creditScore must be an integer"))
		return
	}

	monthlyAvg := 0.0
	if raw := c.PostForm("monthlyAverageTransaction"); raw != "" {
		monthlyAvg, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(c, h.debug, errs.Validation("monthlyAverageTransaction must be a number"))
			return
		}
	}

	docs := entity.Documents{}
	slots := []struct {
		field string
		dest  *string
	}{
		{"cr", &docs.CR},
		{"tradeLicense", &docs.TradeLicense},
		{"taxCard", &docs.TaxCard},
		{"estdCertificate", &docs.EstdCertificate},
		{"auditedReport", &docs.AuditedReport},
		{"bankStatement", &docs.BankStatement},
	}
	for _, slot := range slots {
		url, err := h.saveUpload(c, slot.field, "documents")
		if err != nil {
			respondError(c, h.debug, err)
			return
		}
		*slot.dest = url
	}

	app, err := h.financingService.SubmitApplication(c.Request.Context(), principal, service.SubmitInput{
		CreditScore:   creditScore,
		MonthlyAvgTxn: monthlyAvg,
		Documents:     docs,
	})
	if err != nil {
		respondError(c, h.debug, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: app})
}

// ListApplications handles GET /application
func (h *Handlers) ListApplications(c *gin.Context) {
	principal, _ := principalFrom(c)

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	views, err := h.financingService.ListApplications(c.Request.Context(), principal, skip, limit)
	if err != nil {
		respondError(c, h.debug, err)
		return
	}
	if views == nil {
		views = []*service.ApplicationView{}
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: views})
}

// GetApplicationByID handles GET /application/getApplicationById/:applicationId
func (h *Handlers) GetApplicationByID(c *gin.Context) {
	principal, _ := principalFrom(c)

	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	view, err := h.financingService.GetApplication(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.debug, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// RouteToLender handles POST /application/approve/:applicationId
func (h *Handlers) RouteToLender(c *gin.Context) {
	principal, _ := principalFrom(c)

	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	result, err := h.financingService.RouteToLender(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.debug, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

type lenderDecisionRequest struct {
	Status       string  `json:"status" binding:"required"`
	InterestRate float64 `json:"interestRate"`
	Tenure       int     `json:"tenure"`
}

// LenderDecision handles POST /application/lender-approve/:applicationId
func (h *Handlers) LenderDecision(c *gin.Context) {
	principal, _ := principalFrom(c)

	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	var req lenderDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.debug, errs.Validation("status is required"))
		return
	}

	app, err := h.financingService.LenderDecision(c.Request.Context(), principal, id, service.LenderDecisionInput{
		Decision:     req.Status,
		InterestRate: req.InterestRate,
		Tenure:       req.Tenure,
	})
	if err != nil {
		respondError(c, h.debug, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// UploadInvoice handles POST /application/upload-invoice/:applicationId.
// The MSME sends a multipart form with the invoice file and buyerEmail.
func (h *Handlers) UploadInvoice(c *gin.Context) {
	principal, _ := principalFrom(c)

	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	buyerEmail := c.PostForm("buyerEmail")

	invoiceURL, err := h.saveUpload(c, "invoice", "invoices")
	if err != nil {
		respondError(c, h.debug, err)
		return
	}
	if invoiceURL == "" {
		respondError(c, h.debug, errs.Validation("invoice file is required"))
		return
	}

	app, err := h.financingService.UploadInvoice(c.Request.Context(), principal, id, buyerEmail, invoiceURL)
	if err != nil {
		respondError(c, h.debug, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

type buyerDecisionRequest struct {
	Status string `json:"status" binding:"required"`
}

// BuyerDecision handles POST /application/approve-invoice-buyer/:applicationId
func (h *Handlers) BuyerDecision(c *gin.Context) {
	principal, _ := principalFrom(c)

	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	var req buyerDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.debug, errs.Validation("status is required"))
		return
	}

	app, err := h.financingService.BuyerDecision(c.Request.Context(), principal, id, req.Status)
	if err != nil {
		respondError(c, h.debug, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

type fundInvoiceRequest struct {
	InvoiceAmount float64 `json:"invoiceAmount" binding:"required"`
}

// FundInvoice handles POST /application/fund-invoice/:applicationId
func (h *Handlers) FundInvoice(c *gin.Context) {
	principal, _ := principalFrom(c)

	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	var req fundInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.debug, errs.Validation("invoiceAmount is required"))
		return
	}

	app, err := h.financingService.FundInvoice(c.Request.Context(), principal, id, req.InvoiceAmount)
	if err != nil {
		respondError(c, h.debug, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// MarkAsRepaid handles POST /application/markAsRepaid/:applicationId
func (h *Handlers) MarkAsRepaid(c *gin.Context) {
	principal, _ := principalFrom(c)

	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	app, err := h.financingService.MarkRepaid(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.debug, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// CloseApplication handles POST /application/closeApplication/:applicationId
func (h *Handlers) CloseApplication(c *gin.Context) {
	principal, _ := principalFrom(c)

	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	app, err := h.financingService.CloseApplication(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.debug, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: app})
}

// ExportApplications handles GET /application/export, streaming an XLSX
// of every application
func (h *Handlers) ExportApplications(c *gin.Context) {
	principal, _ := principalFrom(c)

	views, err := h.financingService.ListApplications(c.Request.Context(), principal, 0, exportPageSize)
	if err != nil {
		respondError(c, h.debug, err)
		return
	}

	content, err := h.exporter.Export(views)
	if err != nil {
		h.logger.Error("Failed to export applications", "error", err)
		respondError(c, h.debug, errs.Internal(err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="applications.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		content)
}

const exportPageSize = 10000

// TransitionHistory handles GET /application/history/:applicationId
func (h *Handlers) TransitionHistory(c *gin.Context) {
	principal, _ := principalFrom(c)

	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	records, err := h.auditService.History(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, h.debug, err)
		return
	}
	if records == nil {
		records = []*entity.TransitionRecord{}
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: records})
}

// applicationID parses the :applicationId path parameter
func (h *Handlers) applicationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("applicationId"), 10, 64)
	if err != nil {
		respondError(c, h.debug, errs.Validation("invalid application id"))
		return 0, false
	}
	return id, true
}

// saveUpload stores the named multipart file, if present, and returns
// its public URL. A missing file yields an empty URL, not an error.
func (h *Handlers) saveUpload(c *gin.Context, field, category string) (string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", errs.Validation("invalid upload for " + field)
	}

	content, err := readUpload(fileHeader)
	if err != nil {
		h.logger.Error("Failed to read upload", "field", field, "error", err)
		return "", errs.Internal(err)
	}

	url, err := h.fileStore.Save(category, fileHeader.Filename, content)
	if err != nil {
		h.logger.Error("Failed to store upload", "field", field, "error", err)
		return "", errs.Internal(err)
	}
	return url, nil
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
