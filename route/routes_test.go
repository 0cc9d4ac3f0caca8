package route

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"cafedir/auth"
	"cafedir/controller"
	"cafedir/database"
	"cafedir/form"
	"cafedir/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

type app struct {
	t      *testing.T
	router *gin.Engine
	server *httptest.Server
	cafes  *database.CafeStore
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	users := database.NewUserStore(db)
	accounts, err := auth.NewAuthenticator(users, auth.NewHasher(bcrypt.MinCost))
	require.NoError(t, err)

	sessions := utils.NewManager(utils.ManagerConfig{Secret: "test-secret", TTL: time.Hour}, nil)
	cafes := database.NewCafeStore(db)
	ctl := controller.New(controller.Deps{
		Cafes:    cafes,
		Accounts: accounts,
		Sessions: sessions,
		Ping:     func(ctx context.Context) error { return database.Ping(ctx, db) },
		Logger:   zerolog.Nop(),
	})

	router, err := NewRouter(Options{
		Controller:     ctl,
		Sessions:       sessions,
		Users:          users,
		Logger:         zerolog.Nop(),
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &app{t: t, router: router, server: server, cafes: cafes}
}

// browser keeps its own cookie jar and never follows redirects, so tests can
// assert on the Location header.
type browser struct {
	app    *app
	client *http.Client
}

func (a *app) browser() *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &browser{
		app: a,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.app.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.app.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.app.t, err)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	b.app.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.app.server.URL+path, nil)
	require.NoError(b.app.t, err)
	return b.do(req)
}

func (b *browser) post(path string, values url.Values) (*http.Response, string) {
	b.app.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.app.server.URL+path, strings.NewReader(values.Encode()))
	require.NoError(b.app.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// token reads the anti-forgery token from a page that carries a form.
func (b *browser) token() string {
	b.app.t.Helper()
	_, body := b.get("/register")
	m := csrfInput.FindStringSubmatch(body)
	require.Len(b.app.t, m, 2, "no csrf token on page")
	return m[1]
}

// submit posts values with the current anti-forgery token.
func (b *browser) submit(path string, values url.Values) (*http.Response, string) {
	b.app.t.Helper()
	if values == nil {
		values = url.Values{}
	}
	values.Set(utils.CSRFField, b.token())
	return b.post(path, values)
}

// follow opens a state-changing link with the current anti-forgery token, the
// way the rendered pages build them.
func (b *browser) follow(path string) (*http.Response, string) {
	b.app.t.Helper()
	return b.get(path + "?" + url.Values{utils.CSRFField: {b.token()}}.Encode())
}

func (b *browser) register(name, email, password string) *http.Response {
	resp, _ := b.submit("/register", url.Values{"name": {name}, "email": {email}, "password": {password}})
	return resp
}

func (b *browser) login(email, password string) *http.Response {
	resp, _ := b.submit("/login", url.Values{"email": {email}, "password": {password}})
	return resp
}

func (b *browser) member() *browser {
	b.app.t.Helper()
	require.Equal(b.app.t, "/login", b.register("Alice", "alice@example.com", "hunter2").Header.Get("Location"))
	require.Equal(b.app.t, "/", b.login("alice@example.com", "hunter2").Header.Get("Location"))
	return b
}

func (a *app) count() int64 {
	a.t.Helper()
	n, err := a.cafes.Count(context.Background())
	require.NoError(a.t, err)
	return n
}

func cafeValues(name, location string) url.Values {
	return url.Values{
		"name":           {name},
		"map_url":        {"https://maps.example.com/" + url.PathEscape(name)},
		"img_url":        {"https://img.example.com/cafe.jpg"},
		"description":    {"Strong coffee, loud music"},
		"location":       {location},
		"seats":          {"20-30"},
		"has_toilet":     {"Yes"},
		"has_wifi":       {"Yes"},
		"has_sockets":    {"2 plugs near window"},
		"can_take_calls": {"No"},
		"coffee_price":   {"£2.80"},
	}
}

func TestCafeLifecycle(t *testing.T) {
	a := newApp(t)
	b := a.browser().member()

	_, body := b.get("/")
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "No cafes listed yet.")

	resp, _ := b.submit("/add", cafeValues("Joe's", "London"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	require.EqualValues(t, 1, a.count())

	resp, _ = b.submit("/add", cafeValues("Blue Bottle", "Paris"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.EqualValues(t, 2, a.count())

	joes, err := a.cafes.FindByLocation(context.Background(), "London")
	require.NoError(t, err)
	require.Len(t, joes, 1)
	id := joes[0].ID

	_, body = b.get("/")
	assert.Contains(t, body, html.EscapeString("Joe's"))
	assert.Contains(t, body, "Blue Bottle")
	assert.Contains(t, body, "£2.80")
	assert.Contains(t, body, fmt.Sprintf("/delete/%d?csrf_token=", id))

	resp, body = b.post("/search", url.Values{"search": {"london"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, html.EscapeString("Joe's"))
	assert.NotContains(t, body, "Blue Bottle")
	assert.Equal(t, 1, strings.Count(body, `class="card h-100 cafe"`))

	_, body = b.get(fmt.Sprintf("/update/%d", id))
	assert.Contains(t, body, `value="London"`)

	edited := cafeValues("Joe's", "Berlin")
	resp, _ = b.submit(fmt.Sprintf("/update/%d", id), edited)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	cafe, err := a.cafes.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Berlin", cafe.Location)

	// a bare link without the token deletes nothing
	resp, _ = b.get(fmt.Sprintf("/delete/%d", id))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.EqualValues(t, 2, a.count())

	resp, _ = b.follow(fmt.Sprintf("/delete/%d", id))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.EqualValues(t, 1, a.count())

	_, body = b.get("/")
	assert.NotContains(t, body, html.EscapeString("Joe's"))
	assert.Contains(t, body, "Blue Bottle")
}

func TestAnonymousWritesAreForbidden(t *testing.T) {
	a := newApp(t)
	b := a.browser()

	for _, path := range []string{"/add", "/update/1", "/delete/1", "/logout", "/import"} {
		resp, _ := b.get(path)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}

	// forbidden wins over a missing token
	resp, _ := b.post("/add", cafeValues("Joe's", "London"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = b.submit("/add", cafeValues("Joe's", "London"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.EqualValues(t, 0, a.count())
}

func TestPublicPages(t *testing.T) {
	a := newApp(t)
	b := a.browser()

	for _, path := range []string{"/", "/about", "/search", "/register", "/login"} {
		resp, body := b.get(path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, body, "Log In", path)
	}
}

func TestMissingCafeIsNotFound(t *testing.T) {
	a := newApp(t)
	b := a.browser().member()

	for _, path := range []string{"/update/99", "/update/abc", "/nowhere"} {
		resp, _ := b.get(path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
	for _, path := range []string{"/delete/99", "/delete/-1"} {
		resp, _ := b.follow(path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}

	resp, _ := b.submit("/update/99", cafeValues("Joe's", "London"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.EqualValues(t, 0, a.count())
}

func TestAddRejectsInvalidForm(t *testing.T) {
	a := newApp(t)
	b := a.browser().member()

	values := cafeValues("Joe's", "London")
	values.Set("map_url", "not a url")
	values.Set("seats", "   ")

	resp, body := b.submit("/add", values)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Invalid URL.")
	assert.Contains(t, body, "This field is required.")
	assert.Contains(t, body, `value="not a url"`)
	assert.EqualValues(t, 0, a.count())
}

func TestAddDuplicateName(t *testing.T) {
	a := newApp(t)
	b := a.browser().member()

	resp, _ := b.submit("/add", cafeValues("Joe's", "London"))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, body := b.submit("/add", cafeValues("Joe's", "Paris"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "is already listed.")
	assert.EqualValues(t, 1, a.count())
}

func TestMissingCSRFToken(t *testing.T) {
	a := newApp(t)
	b := a.browser().member()

	resp, _ := b.post("/add", cafeValues("Joe's", "London"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	values := cafeValues("Joe's", "London")
	values.Set(utils.CSRFField, "forged")
	resp, _ = b.post("/add", values)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.EqualValues(t, 0, a.count())
}

func TestSearchWithoutResults(t *testing.T) {
	a := newApp(t)
	b := a.browser()

	resp, body := b.post("/search", url.Values{"search": {"new york"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No cafes in New York")
	assert.Contains(t, body, "No cafes found.")
}

func TestSearchWithoutField(t *testing.T) {
	a := newApp(t)
	b := a.browser()

	resp, body := b.post("/search", url.Values{"city": {"London"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotContains(t, body, "No cafes in")

	// an empty term is still a search
	resp, body = b.post("/search", url.Values{"search": {""}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No cafes found.")
}

func TestPanicRendersErrorPage(t *testing.T) {
	a := newApp(t)
	a.router.GET("/boom", func(*gin.Context) {
		panic("boom")
	})

	resp, body := a.browser().get("/boom")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "Something went wrong on our side.")
	assert.NotContains(t, body, "boom")
}

func TestRegisterExistingEmail(t *testing.T) {
	a := newApp(t)
	b := a.browser()

	require.Equal(t, "/login", b.register("Alice", "alice@example.com", "hunter2").Header.Get("Location"))

	resp := b.register("Someone Else", "alice@example.com", "other")
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, body := b.get("/login")
	assert.Contains(t, body, "You already have an account, Log in")

	// the first password still works
	assert.Equal(t, "/", b.login("alice@example.com", "hunter2").Header.Get("Location"))
}

func TestRegisterInvalidForm(t *testing.T) {
	a := newApp(t)
	b := a.browser()

	resp, body := b.submit("/register", url.Values{"name": {""}, "email": {"nope"}, "password": {"pw"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "This field is required.")
	assert.Contains(t, body, "Invalid email address.")
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	a := newApp(t)
	b := a.browser()
	b.register("Alice", "alice@example.com", "hunter2")

	for _, creds := range [][2]string{
		{"alice@example.com", "wrong"},
		{"nobody@example.com", "hunter2"},
	} {
		resp := b.login(creds[0], creds[1])
		assert.Equal(t, "/login", resp.Header.Get("Location"))

		_, body := b.get("/login")
		assert.Contains(t, body, "Email or password does not exist")
		assert.NotContains(t, body, "Log Out")
	}
}

func TestLogout(t *testing.T) {
	a := newApp(t)
	b := a.browser().member()

	resp, _ := b.get("/logout")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_, body := b.get("/")
	assert.Contains(t, body, "Log Out")

	resp, _ = b.follow("/logout")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, body = b.get("/")
	assert.NotContains(t, body, "Log Out")

	resp, _ = b.submit("/add", cafeValues("Joe's", "London"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestExportImportRoundTrip(t *testing.T) {
	a := newApp(t)
	b := a.browser().member()

	resp, _ := b.submit("/add", cafeValues("Joe's", "London"))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, body := b.get("/export")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "cafes.xlsx")

	xl, err := excelize.OpenReader(strings.NewReader(body))
	require.NoError(t, err)
	rows, err := xl.GetRows("Cafes")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, form.CafeFields, rows[0])
	assert.Equal(t, "Joe's", rows[1][0])
	require.NoError(t, xl.Close())

	cafes, err := a.cafes.List(context.Background())
	require.NoError(t, err)
	resp, _ = b.follow(fmt.Sprintf("/delete/%d", cafes[0].ID))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = b.upload([]byte(body))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	_, page := b.get("/")
	assert.Contains(t, page, "Imported 1 cafes, skipped 0 rows")

	imported, err := a.cafes.List(context.Background())
	require.NoError(t, err)
	require.Len(t, imported, 1)
	want := cafes[0]
	want.ID = imported[0].ID
	assert.Equal(t, want, imported[0])

	resp = b.upload([]byte(body))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	_, page = b.get("/")
	assert.Contains(t, page, "Imported 0 cafes, skipped 1 rows")
}

func TestImportRejectsNonWorkbook(t *testing.T) {
	a := newApp(t)
	b := a.browser().member()

	resp := b.upload([]byte("name,location\nJoe's,London\n"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.EqualValues(t, 0, a.count())
}

func (b *browser) upload(data []byte) *http.Response {
	b.app.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(b.app.t, mw.WriteField(utils.CSRFField, b.token()))
	part, err := mw.CreateFormFile("file", "cafes.xlsx")
	require.NoError(b.app.t, err)
	_, err = part.Write(data)
	require.NoError(b.app.t, err)
	require.NoError(b.app.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, b.app.server.URL+"/import", &buf)
	require.NoError(b.app.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, _ := b.do(req)
	return resp
}

func TestHealth(t *testing.T) {
	a := newApp(t)
	resp, body := a.browser().get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}
