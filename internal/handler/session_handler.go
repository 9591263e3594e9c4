package handler

import (
	"bytes"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/grid"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/importer"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	defaultRowLimit = 50
	maxRowLimit     = 1000
)

// SessionHandler exposes a conversion session over HTTP.
type SessionHandler struct {
	session *jsonsheet.Session
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(session *jsonsheet.Session) *SessionHandler {
	return &SessionHandler{session: session}
}

type searchRequest struct {
	Terms string `json:"terms"`
}

type selectSheetRequest struct {
	Name string `json:"name" binding:"required"`
}

// SheetList is the body of GET /api/v1/sheets.
type SheetList struct {
	Names       []string `json:"names"`
	ActiveSheet string   `json:"active_sheet"`
}

// SheetPage is a window of data rows of one sheet.
type SheetPage struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Header  []string   `json:"header"`
	Rows    [][]string `json:"rows"`
}

// Import handles POST /api/v1/import
func (h *SessionHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, jsonsheet.ErrFileTooLarge)
			return
		}
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	if !importer.IsJSONFile(header.Filename, header.Header.Get("Content-Type")) {
		RespondError(c, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: json")
		return
	}

	err = h.session.Import(c.Request.Context(), importer.File{
		Name: header.Filename,
		Size: header.Size,
		Body: file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, h.session.State())
}

// Cancel handles POST /api/v1/import/cancel
func (h *SessionHandler) Cancel(c *gin.Context) {
	h.session.Cancel()
	RespondOK(c, h.session.State())
}

// SetSearchTerms handles PUT /api/v1/search
func (h *SessionHandler) SetSearchTerms(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	h.session.SetSearchTerms(req.Terms)
	RespondOK(c, h.session.State())
}

// Convert handles POST /api/v1/convert
func (h *SessionHandler) Convert(c *gin.Context) {
	if err := h.session.Convert(c.Request.Context()); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, h.session.State())
}

// Clear handles POST /api/v1/clear
func (h *SessionHandler) Clear(c *gin.Context) {
	h.session.Clear()
	RespondOK(c, h.session.State())
}

// State handles GET /api/v1/state
func (h *SessionHandler) State(c *gin.Context) {
	RespondOK(c, h.session.State())
}

// ListSheets handles GET /api/v1/sheets
func (h *SessionHandler) ListSheets(c *gin.Context) {
	st := h.session.State()
	names := st.SheetNames
	if names == nil {
		names = []string{}
	}
	RespondOK(c, SheetList{Names: names, ActiveSheet: st.ActiveSheet})
}

// SelectSheet handles PUT /api/v1/sheets/active
func (h *SessionHandler) SelectSheet(c *gin.Context) {
	var req selectSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if err := h.session.SelectSheet(req.Name); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, h.session.State())
}

// GetSheet handles GET /api/v1/sheets/:name
func (h *SessionHandler) GetSheet(c *gin.Context) {
	name := c.Param("name")
	g, ok := h.session.Grid(name)
	if !ok {
		HandleError(c, jsonsheet.ErrSheetNotFound)
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRowLimit)))
	if limit <= 0 || limit > maxRowLimit {
		limit = defaultRowLimit
	}
	if offset < 0 {
		offset = 0
	}

	data := g.DataRows()
	total := len(data)
	start := min(offset, total)
	end := min(start+limit, total)

	rows := data[start:end]
	if rows == nil {
		rows = [][]string{}
	}
	RespondPaginated(c, SheetPage{
		Name:    name,
		Columns: grid.ColumnLetters(g.Width()),
		Header:  g.Header(),
		Rows:    rows,
	}, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Export handles GET /api/v1/export
func (h *SessionHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	name, err := h.session.ExportWorkbook(&buf)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
