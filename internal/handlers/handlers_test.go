package handlers_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hydronet/internal/db"
	"hydronet/internal/middleware"
	"hydronet/internal/models"
	"hydronet/internal/router"
)

const (
	nodesCSV = `type,id,x,y,elevation
reservoir,R1,0,50,60
node,J1,20,50,10
node,J2,40,50,12
`
	pipesCSV = `id,from,to,length,diameter,roughness
P1,R1,J1,1000,300,130
P2,J1,J2,800,250,130
`
	demandsCSV = `node_id,demand
J1,0.01
J2,0.015
`
)

// setupServer wires the full stack the way cmd/server does, against a
// throwaway in-memory database.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.Project{}, &models.SimulationRun{}))
	db.DB = gdb

	r := gin.New()
	r.Use(sessions.Sessions("hydronet_session", cookie.NewStore([]byte("test-secret"))))
	r.HTMLRender = router.LoadTemplates("../../web/templates")
	r.Use(middleware.LoadUser())
	router.RegisterRoutes(r)
	return r
}

// browser carries session cookies across requests like a real client.
type browser struct {
	t       *testing.T
	r       *gin.Engine
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, r *gin.Engine) *browser {
	return &browser{t: t, r: r, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	b.r.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return b.do(req)
}

func (b *browser) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postFiles(path string, files map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, content := range files {
		fw, err := w.CreateFormFile(field, field+".csv")
		require.NoError(b.t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

func (b *browser) signup(email string) {
	w := b.postForm("/signup", url.Values{"email": {email}, "password": {"secret1"}})
	require.Equal(b.t, http.StatusFound, w.Code)
	require.Equal(b.t, "/projects", w.Header().Get("Location"))
}

func (b *browser) createProject(name string) string {
	w := b.postForm("/projects", url.Values{"name": {name}})
	require.Equal(b.t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	require.True(b.t, strings.HasPrefix(loc, "/projects/"), "unexpected redirect %q", loc)
	return loc
}

func TestSignupLoginRoundTrip(t *testing.T) {
	b := newBrowser(t, setupServer(t))

	// Anonymous users bounce to the login page.
	w := b.get("/projects")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	b.signup("alice@example.com")

	w = b.get("/projects")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Projects")
	assert.Contains(t, w.Body.String(), "alice")

	w = b.get("/logout")
	require.Equal(t, http.StatusFound, w.Code)

	w = b.get("/projects")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = b.postForm("/login", url.Values{"email": {"alice@example.com"}, "password": {"wrong-pass"}})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Wrong email or password")

	w = b.postForm("/login", url.Values{"email": {"alice@example.com"}, "password": {"secret1"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/projects", w.Header().Get("Location"))
}

func TestRegisterRejectsBadInput(t *testing.T) {
	b := newBrowser(t, setupServer(t))

	w := b.postForm("/signup", url.Values{"email": {"not-an-email"}, "password": {"secret1"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email address")

	w = b.postForm("/signup", url.Values{"email": {"bob@example.com"}, "password": {"short"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least 6 characters")
}

func TestCSVUploadValidateSaveFlow(t *testing.T) {
	b := newBrowser(t, setupServer(t))
	b.signup("carol@example.com")
	loc := b.createProject("Riverside")

	w := b.postFiles(loc+"/data/csv", map[string]string{
		"nodes":   nodesCSV,
		"pipes":   pipesCSV,
		"demands": demandsCSV,
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, loc, w.Header().Get("Location"))

	w = b.get(loc)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "No Data Errors Found.")
	assert.Contains(t, body, "J1")
	assert.Contains(t, body, "P2")

	w = b.get(loc + "/export/inp")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "generated_network.inp")
	assert.Contains(t, w.Body.String(), "[JUNCTIONS]")
	assert.Contains(t, w.Body.String(), "R1")
}

func TestCSVUploadMissingColumn(t *testing.T) {
	b := newBrowser(t, setupServer(t))
	b.signup("dave@example.com")
	loc := b.createProject("Broken")

	w := b.postFiles(loc+"/data/csv", map[string]string{
		"nodes":   nodesCSV,
		"pipes":   "id,from,to,length,diameter\nP1,R1,J1,1000,300\n",
		"demands": demandsCSV,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing Required Column")
}

func TestINPUploadFlow(t *testing.T) {
	b := newBrowser(t, setupServer(t))
	b.signup("erin@example.com")
	loc := b.createProject("Imported")

	src := `[JUNCTIONS]
J1  10  0.02

[RESERVOIRS]
R1  60

[PIPES]
P1  R1  J1  1000  300  130

[COORDINATES]
J1  20  50
R1  0   50
`
	w := b.postFiles(loc+"/data/inp", map[string]string{"inp": src})
	require.Equal(t, http.StatusFound, w.Code)

	w = b.get(loc)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No Data Errors Found.")
	assert.Contains(t, w.Body.String(), "R1")
}

func TestProjectAccessIsOwnerScoped(t *testing.T) {
	r := setupServer(t)

	owner := newBrowser(t, r)
	owner.signup("frank@example.com")
	loc := owner.createProject("Private")

	other := newBrowser(t, r)
	other.signup("grace@example.com")

	w := other.get(loc)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownRunIsNotFound(t *testing.T) {
	b := newBrowser(t, setupServer(t))
	b.signup("heidi@example.com")

	w := b.get("/runs/no-such-run")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}
