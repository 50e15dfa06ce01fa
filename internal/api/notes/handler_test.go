package notes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopnotes-app/database"
	"shopnotes-app/internal/app/http/middleware"
	"shopnotes-app/internal/domain/notes"
	"shopnotes-app/internal/domain/plans"
	"shopnotes-app/internal/infra/shopify"
	"shopnotes-app/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	apiKey    = "test-key"
	apiSecret = "test-secret"
	shopName  = "demo.myshopify.com"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.NewDB(t, database.Models()...)
	h := &Handler{DB: db}

	r := gin.New()
	api := r.Group("/api",
		middleware.ShopifySession(apiKey, apiSecret),
		middleware.RequirePlanAligned(db, time.Now),
		middleware.SanitizeInput("content"),
	)
	api.GET("/notes", h.ListNotes)
	api.POST("/notes", middleware.RequireQuota(db, plans.ResourceNotes), h.CreateNote)
	api.GET("/notes/:id", h.GetNote)
	api.PUT("/notes/:id", h.UpdateNote)
	api.DELETE("/notes/:id", h.DeleteNote)
	api.GET("/notes/:id/versions", h.ListVersions)
	api.POST("/notes/:id/versions/:version/restore", h.RestoreVersion)
	api.GET("/folders", h.ListFolders)
	api.POST("/folders", middleware.RequireQuota(db, plans.ResourceFolders), h.CreateFolder)
	api.PUT("/folders/:id", h.UpdateFolder)
	api.DELETE("/folders/:id", h.DeleteFolder)
	return db, r
}

func call(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	tok, err := shopify.MintSessionToken(shopName, apiKey, apiSecret, time.Now(), time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestNotes_CRUD(t *testing.T) {
	_, r := setup(t)

	w, folder := call(t, r, http.MethodPost, "/api/folders", gin.H{"name": "Ideas"})
	require.Equal(t, http.StatusCreated, w.Code)
	folderID := folder["id"].(string)

	w, note := call(t, r, http.MethodPost, "/api/notes", gin.H{
		"title":    "Launch",
		"content":  `<p>hello</p><script>alert(1)</script>`,
		"folderId": folderID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "<p>hello</p>", note["content"], "rich text is sanitized")
	noteID := note["id"].(string)

	w, list := call(t, r, http.MethodGet, "/api/notes?folderId="+folderID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list["notes"], 1)

	w, _ = call(t, r, http.MethodDelete, "/api/folders/"+folderID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, got := call(t, r, http.MethodGet, "/api/notes/"+noteID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, got["folderId"], "note survives its folder")

	w, _ = call(t, r, http.MethodDelete, "/api/notes/"+noteID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, r, http.MethodGet, "/api/notes/"+noteID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotes_RejectsForeignFolder(t *testing.T) {
	_, r := setup(t)
	w, body := call(t, r, http.MethodPost, "/api/notes", gin.H{
		"title":    "x",
		"folderId": "3f2a9a8e-2b1c-4c55-9d7e-1e0f4b1f2a3c",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Folder not found", body["error"])
}

func TestFolders_QuotaOnFreePlan(t *testing.T) {
	_, r := setup(t)

	limit := plans.Limit(plans.Free, plans.ResourceFolders)
	for i := int64(0); i < limit; i++ {
		w, _ := call(t, r, http.MethodPost, "/api/folders", gin.H{"name": fmt.Sprintf("f%d", i)})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, body := call(t, r, http.MethodPost, "/api/folders", gin.H{"name": "one too many"})

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "PLAN_LIMIT_REACHED", body["code"])
	assert.Equal(t, "FREE", body["plan"])
	assert.NotEmpty(t, body["message"])
	usage := body["usage"].(map[string]interface{})
	folders := usage["folders"].(map[string]interface{})
	assert.EqualValues(t, limit, folders["used"])
	assert.EqualValues(t, limit, folders["limit"])
}

func TestNotes_VersionsAndRestore(t *testing.T) {
	db, r := setup(t)

	_, note := call(t, r, http.MethodPost, "/api/notes", gin.H{"title": "v1", "content": "one"})
	id := note["id"].(string)

	w, _ := call(t, r, http.MethodPut, "/api/notes/"+id, gin.H{"title": "v2", "content": "two"})
	require.Equal(t, http.StatusOK, w.Code)

	// pin only: no new version
	w, _ = call(t, r, http.MethodPut, "/api/notes/"+id, gin.H{"pinned": true})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := call(t, r, http.MethodGet, "/api/notes/"+id+"/versions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	versions := body["versions"].([]interface{})
	require.Len(t, versions, 1)
	assert.Equal(t, "v1", versions[0].(map[string]interface{})["title"])

	w, restored := call(t, r, http.MethodPost, "/api/notes/"+id+"/versions/1/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "v1", restored["title"])
	assert.Equal(t, "one", restored["content"])
	assert.Equal(t, true, restored["pinned"])

	var n int64
	db.Model(&notes.NoteVersion{}).Where("note_id = ?", id).Count(&n)
	assert.Equal(t, int64(2), n, "restore snapshots the replaced text")

	w, _ = call(t, r, http.MethodPost, "/api/notes/"+id+"/versions/99/restore", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotes_FreePlanPrunesVersions(t *testing.T) {
	db, r := setup(t)
	_, note := call(t, r, http.MethodPost, "/api/notes", gin.H{"title": "t", "content": "0"})
	id := note["id"].(string)

	for i := 1; i <= 8; i++ {
		w, _ := call(t, r, http.MethodPut, "/api/notes/"+id, gin.H{"content": fmt.Sprintf("%d", i)})
		require.Equal(t, http.StatusOK, w.Code)
	}

	var kept []notes.NoteVersion
	require.NoError(t, db.Where("note_id = ?", id).Order("version ASC").Find(&kept).Error)
	require.Len(t, kept, plans.LimitsFor(plans.Free).VersionsPerNote)
	assert.Equal(t, 4, kept[0].Version)
	assert.Equal(t, 8, kept[len(kept)-1].Version)
}
