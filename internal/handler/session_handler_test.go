package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/jsonsheet-go/internal/handler"
	"github.com/ukaji3/jsonsheet-go/internal/router"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet"
	"github.com/ukaji3/jsonsheet-go/pkg/jsonsheet/models"
)

const sampleJSON = `{"parallel":[{"id":1,"source":"go home","target":"x"},{"id":2,"source":"home go","target":"y"}]}`

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	opts := jsonsheet.DefaultSessionOptions()
	opts.Logger = logger
	session := jsonsheet.NewSession(opts)
	return router.Setup(
		handler.NewSessionHandler(session),
		handler.NewStateStreamHandler(session),
		1<<20,
		logger,
	)
}

func uploadRequest(t *testing.T, name, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/import", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func jsonRequest(method, path, body string) *http.Request {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type stateResponse struct {
	Success bool              `json:"success"`
	Data    models.State      `json:"data"`
	Error   *handler.APIError `json:"error"`
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) stateResponse {
	t.Helper()
	var resp stateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSessionHandler_ImportConvertExport(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, uploadRequest(t, "data.json", sampleJSON))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeState(t, w)
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.HasDocument)
	assert.Equal(t, 2, resp.Data.RecordCount)

	w = serve(r, jsonRequest(http.MethodPut, "/api/v1/search", `{"terms":"go home, go home now"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.SearchTerm{"go home", "go home now"}, decodeState(t, w).Data.SearchTerms)

	w = serve(r, jsonRequest(http.MethodPost, "/api/v1/convert", ""))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decodeState(t, w)
	assert.Equal(t, []string{"go home", "go home now"}, resp.Data.SheetNames)
	assert.Equal(t, "go home", resp.Data.ActiveSheet)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/export", http.NoBody)
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename=data.xlsx`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"go home", "go home now"}, f.GetSheetList())
}

func TestSessionHandler_ImportInvalidJSON(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, uploadRequest(t, "bad.json", `{"parallel":`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	resp := decodeState(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_JSON", resp.Error.Code)
	assert.True(t, strings.HasPrefix(resp.Error.Message, "Invalid JSON format: "), resp.Error.Message)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/state", http.NoBody)
	st := decodeState(t, serve(r, req)).Data
	assert.False(t, st.HasDocument)
	assert.Equal(t, resp.Error.Message, st.Error)
}

func TestSessionHandler_ImportRejectsOtherFiles(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, uploadRequest(t, "data.csv", "a,b"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", decodeState(t, w).Error.Code)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/import", http.NoBody)
	w = serve(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decodeState(t, w).Error.Code)
}

func TestSessionHandler_ImportTooLarge(t *testing.T) {
	r := newTestRouter(t)

	big := `{"parallel":"` + strings.Repeat("x", 2<<20) + `"}`
	w := serve(r, uploadRequest(t, "big.json", big))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", decodeState(t, w).Error.Code)
}

func TestSessionHandler_ExportBeforeConvert(t *testing.T) {
	r := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/export", http.NoBody)
	w := serve(r, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NO_WORKBOOK", decodeState(t, w).Error.Code)
}

func TestSessionHandler_ConvertWithoutDocument(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, jsonRequest(http.MethodPost, "/api/v1/convert", ""))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeState(t, w).Data.SheetNames)
}

func TestSessionHandler_Sheets(t *testing.T) {
	r := newTestRouter(t)

	require.Equal(t, http.StatusOK, serve(r, uploadRequest(t, "data.json", sampleJSON)).Code)
	serve(r, jsonRequest(http.MethodPut, "/api/v1/search", `{"terms":"go home, y"}`))
	require.Equal(t, http.StatusOK, serve(r, jsonRequest(http.MethodPost, "/api/v1/convert", "")).Code)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/sheets", http.NoBody)
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data handler.SheetList `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []string{"go home", "y"}, list.Data.Names)
	assert.Equal(t, "go home", list.Data.ActiveSheet)

	w = serve(r, jsonRequest(http.MethodPut, "/api/v1/sheets/active", `{"name":"y"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "y", decodeState(t, w).Data.ActiveSheet)

	w = serve(r, jsonRequest(http.MethodPut, "/api/v1/sheets/active", `{"name":"nope"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/sheets/"+url.PathEscape("go home")+"?offset=1&limit=1", http.NoBody)
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page struct {
		Data handler.SheetPage `json:"data"`
		Meta handler.PagMeta   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, []string{"A", "B", "C"}, page.Data.Columns)
	assert.Equal(t, []string{"id", "source", "target"}, page.Data.Header)
	assert.Equal(t, [][]string{{"2", "home go", "y"}}, page.Data.Rows)
	assert.Equal(t, handler.PagMeta{Total: 2, Offset: 1, Limit: 1}, page.Meta)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/sheets/missing", http.NoBody)
	assert.Equal(t, http.StatusNotFound, serve(r, req).Code)
}

func TestSessionHandler_Clear(t *testing.T) {
	r := newTestRouter(t)

	require.Equal(t, http.StatusOK, serve(r, uploadRequest(t, "data.json", sampleJSON)).Code)
	require.Equal(t, http.StatusOK, serve(r, jsonRequest(http.MethodPost, "/api/v1/convert", "")).Code)

	w := serve(r, jsonRequest(http.MethodPost, "/api/v1/clear", ""))
	require.Equal(t, http.StatusOK, w.Code)
	st := decodeState(t, w).Data
	assert.False(t, st.HasDocument)
	assert.Empty(t, st.SheetNames)
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStateStream(t *testing.T) {
	r := newTestRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	type message struct {
		Type  string        `json:"type"`
		State *models.State `json:"state"`
	}

	var first message
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "state", first.Type)
	require.NotNil(t, first.State)
	assert.False(t, first.State.HasDocument)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	var pong message
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong.Type)

	req := jsonRequest(http.MethodPut, srv.URL+"/api/v1/search", `{"terms":"hello"}`)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var update message
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "state", update.Type)
	require.NotNil(t, update.State)
	assert.Equal(t, []models.SearchTerm{"hello"}, update.State.SearchTerms)
}
