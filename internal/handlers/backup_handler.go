package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/services"
)

// maxBackupSize bounds an uploaded backup file.
const maxBackupSize = 32 << 20

// BackupHandler handles backup download, restore, CSV export and reset.
type BackupHandler struct {
	backupService services.BackupServicer
}

// NewBackupHandler creates a new BackupHandler.
func NewBackupHandler(backupService services.BackupServicer) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// ExportJSON handles downloading a full backup.
// @Summary     Download backup
// @Description Download every category and transaction as a JSON backup file
// @Tags        backup
// @Produce     json
// @Success     200 {object} services.Backup "Backup file"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /backup [get]
func (h *BackupHandler) ExportJSON(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.backupService.ExportJSON(&buf); err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("pennywise-backup-%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

// ImportJSON handles restoring a backup.
// @Summary     Restore backup
// @Description Replace all categories and transactions with a backup. Accepts the JSON as the request body or as a multipart "file" field.
// @Tags        backup
// @Accept      json
// @Accept      mpfd
// @Produce     json
// @Param       file formData file false "Backup file"
// @Success     200 {object} services.ImportResult "Rows restored"
// @Failure     400 {object} ErrorResponse "Malformed backup"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Security    AdminKey
// @Router      /backup [post]
func (h *BackupHandler) ImportJSON(c *gin.Context) {
	var body io.Reader = http.MaxBytesReader(c.Writer, c.Request.Body, maxBackupSize)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrImportFormat, "multipart upload needs a file field"))
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
			return
		}
		defer f.Close()
		body = f
	}

	result, err := h.backupService.ImportJSON(body)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"imported": result})
}

// ExportCSV handles exporting transactions as CSV.
// @Summary     Export CSV
// @Description Export matching transactions as CSV with columns Date, Type, Category, Amount, Notes
// @Tags        backup
// @Produce     text/csv
// @Param       month       query int    false "Filter by month (0-11, requires year)"
// @Param       year        query int    false "Filter by year"
// @Param       from_date   query string false "Filter by start date"
// @Param       to_date     query string false "Filter by end date"
// @Param       type        query string false "Filter by transaction type"
// @Param       category_id query int    false "Filter by category ID"
// @Param       account_id  query int    false "Filter by account ID"
// @Success     200 {string} string "CSV file"
// @Failure     400 {object} ErrorResponse "Invalid input or nothing to export"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /backup/export.csv [get]
func (h *BackupHandler) ExportCSV(c *gin.Context) {
	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if _, err := h.backupService.ExportCSV(&buf, filter); err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Reset handles wiping the ledger back to the default categories.
// @Summary     Reset ledger
// @Description Delete all transactions, budgets and categories and reseed the defaults. Requires confirm=true.
// @Tags        backup
// @Produce     json
// @Param       confirm query bool true "Must be true"
// @Success     200 {object} MessageResponse "Ledger reset"
// @Failure     400 {object} ErrorResponse "Missing confirmation"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Security    AdminKey
// @Router      /backup/reset [post]
func (h *BackupHandler) Reset(c *gin.Context) {
	if c.Query("confirm") != "true" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "reset requires confirm=true"))
		return
	}

	if err := h.backupService.Reset(); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Ledger reset"})
}
