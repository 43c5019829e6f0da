package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tcm-clinic/internal/app"
	"tcm-clinic/internal/model"
	"tcm-clinic/internal/pdf"
	"tcm-clinic/internal/transport/http/response"
)

type RecordHandler struct {
	reportService *app.ReportService
	recordService *app.RecordService
	log           *zap.Logger
}

// GenerateReportRequest mirrors the field labels of the clinician-facing
// form, which the frontend submits verbatim as JSON keys.
type GenerateReportRequest struct {
	PatientName     string `json:"Patient Name" binding:"required"`
	TimeReason      string `json:"Time and Reason" binding:"required"`
	Symptoms        string `json:"Symptoms" binding:"required"`
	TreatmentMethod string `json:"Treatment Method" binding:"required"`
	SessionNumber   int    `json:"Current Treatment Session Number" binding:"required,gt=0"`
	TotalSessions   int    `json:"Planned Total Sessions" binding:"required,gt=0"`
}

func NewRecordHandler(reportService *app.ReportService, recordService *app.RecordService, log *zap.Logger) *RecordHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordHandler{
		reportService: reportService,
		recordService: recordService,
		log:           log,
	}
}

func (h *RecordHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

func (h *RecordHandler) GenerateReport(c *gin.Context) {
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Err(c, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}

	record, err := h.reportService.Generate(c.Request.Context(), app.VisitInput{
		PatientName:     req.PatientName,
		TimeReason:      req.TimeReason,
		Symptoms:        req.Symptoms,
		TreatmentMethod: req.TreatmentMethod,
		SessionNumber:   req.SessionNumber,
		TotalSessions:   req.TotalSessions,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Err(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrStorage) && record != nil:
			// Generation succeeded but nothing was persisted; hand the text
			// back anyway so the clinician's report is not lost.
			h.log.Error("record not persisted after generation", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":               err.Error(),
				"ai_generated_report": record.AIReport,
			})
		default:
			h.log.Error("generate report failed", zap.Error(err))
			response.Err(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ai_generated_report": record.AIReport})
}

func (h *RecordHandler) History(c *gin.Context) {
	groups, err := h.recordService.History(c.Request.Context())
	if err != nil {
		h.log.Error("load history failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load record history.")
		return
	}
	c.HTML(http.StatusOK, "history.html", gin.H{"Groups": groups})
}

func (h *RecordHandler) Download(c *gin.Context) {
	id, err := parseRecordID(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "Record not found.")
		return
	}

	record, err := h.recordService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, app.ErrRecordNotFound) {
			c.String(http.StatusNotFound, "Record not found.")
			return
		}
		h.log.Error("fetch record for download failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load record.")
		return
	}

	data, err := pdf.Render(record)
	if err != nil {
		h.log.Error("render pdf failed", zap.Uint("record_id", record.ID), zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to render document.")
		return
	}

	encoded := url.PathEscape(DownloadFilename(record))
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encoded)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *RecordHandler) Delete(c *gin.Context) {
	id, err := parseRecordID(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "Record not found.")
		return
	}

	principal := app.Principal{DeleteSecret: c.PostForm("password")}
	if err := h.recordService.Delete(c.Request.Context(), id, principal); err != nil {
		switch {
		case errors.Is(err, app.ErrDeleteForbidden):
			c.String(http.StatusForbidden, "Incorrect password. Record not deleted.")
		case errors.Is(err, app.ErrRecordNotFound):
			c.String(http.StatusNotFound, "Record not found.")
		default:
			h.log.Error("delete record failed", zap.Uint("record_id", id), zap.Error(err))
			c.String(http.StatusInternalServerError, "An error occurred while deleting the record.")
		}
		return
	}

	c.Redirect(http.StatusSeeOther, "/history")
}

// DownloadFilename builds the attachment name: creation date, id, and the
// patient name with spaces replaced by underscores.
func DownloadFilename(record *model.Record) string {
	name := strings.ReplaceAll(record.PatientName, " ", "_")
	return fmt.Sprintf("%s_%d_%s.pdf", record.CreatedAt.Format("2006-01-02"), record.ID, name)
}

func parseRecordID(raw string) (uint, error) {
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id64 == 0 {
		return 0, fmt.Errorf("invalid record id %q", raw)
	}
	return uint(id64), nil
}
