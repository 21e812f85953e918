package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvalderrama/ecoquiz/internal/auth"
	"github.com/mvalderrama/ecoquiz/internal/config"
	"github.com/mvalderrama/ecoquiz/internal/logging"
	"github.com/mvalderrama/ecoquiz/internal/result"
	"github.com/mvalderrama/ecoquiz/internal/session"
	"github.com/mvalderrama/ecoquiz/internal/user"
)

// --- fakes ---

// fakeAuth stores users in memory with plain passwords; hashing has its own
// tests in the auth package.
type fakeAuth struct {
	users     map[string]*user.User
	passwords map[string]string
	nextID    int64
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		users:     map[string]*user.User{},
		passwords: map[string]string{},
		nextID:    1,
	}
}

func (f *fakeAuth) Register(ctx context.Context, nombre, apellido, email, password string) (*user.User, error) {
	if nombre == "" || apellido == "" || email == "" || password == "" {
		return nil, auth.ErrFieldsRequired
	}
	if _, exists := f.users[email]; exists {
		return nil, user.ErrDuplicateEmail
	}
	u := &user.User{ID: f.nextID, Nombre: nombre, Apellido: apellido, Email: email}
	f.nextID++
	f.users[email] = u
	f.passwords[email] = password
	return u, nil
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*user.User, error) {
	u, ok := f.users[email]
	if !ok || f.passwords[email] != password {
		return nil, auth.ErrInvalidCredentials
	}
	return u, nil
}

// fakeResults keeps newest-first order, matching the repository's
// created_at DESC query.
type fakeResults struct {
	rows   []*result.Result
	nextID int64
}

func (f *fakeResults) Create(ctx context.Context, userID int64, juego string, score int) (*result.Result, error) {
	f.nextID++
	r := &result.Result{ID: f.nextID, UserID: userID, Juego: juego, Score: score, CreatedAt: time.Now()}
	f.rows = append([]*result.Result{r}, f.rows...)
	return r, nil
}

func (f *fakeResults) ListByUser(ctx context.Context, userID int64) ([]*result.Result, error) {
	var out []*result.Result
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeLimiter struct {
	exceeded bool
	recorded int
}

func (f *fakeLimiter) CheckIPRateLimit(ctx context.Context, ip, purpose string) (bool, error) {
	return f.exceeded, nil
}

func (f *fakeLimiter) RecordIPRequest(ctx context.Context, ip, purpose string) error {
	f.recorded++
	return nil
}

// --- harness ---

type testApp struct {
	server  *httptest.Server
	client  *http.Client
	auth    *fakeAuth
	results *fakeResults
	limiter *fakeLimiter
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := logging.NewLogger(true)

	manager, err := session.NewManager([]byte("0123456789abcdef0123456789abcdef"), time.Hour, false)
	require.NoError(t, err)

	renderer, err := NewRenderer()
	require.NoError(t, err)

	fa := newFakeAuth()
	fr := &fakeResults{}
	fl := &fakeLimiter{}

	handler := NewHandler(fa, fr, manager, fl, renderer, logger)
	router := NewRouter(&config.Config{Server: config.ServerConfig{Env: "dev"}}, handler, session.NewMiddleware(manager), logger)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		server:  server,
		client:  &http.Client{Jar: jar},
		auth:    fa,
		results: fr,
		limiter: fl,
	}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// noRedirect returns a jarless client that surfaces redirects instead of
// following them.
func noRedirect(a *testApp) *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) register(t *testing.T, nombre, apellido, email, password string) (*http.Response, string) {
	t.Helper()
	return a.postForm(t, "/register", url.Values{
		"nombre":   {nombre},
		"apellido": {apellido},
		"email":    {email},
		"password": {password},
	})
}

func (a *testApp) login(t *testing.T, email, password string) (*http.Response, string) {
	t.Helper()
	return a.postForm(t, "/login", url.Values{
		"email":    {email},
		"password": {password},
	})
}

// --- tests ---

func TestProtectedRoutesRedirectAnonymous(t *testing.T) {
	app := newTestApp(t)
	plain := noRedirect(app)

	for _, path := range []string{"/juego", "/preguntas", "/historial"} {
		resp, err := plain.Get(app.server.URL + path)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "path %s", path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), "path %s", path)
		assert.NotContains(t, string(body), "caneca", "path %s must not leak quiz content", path)
	}
}

func TestLandingPageIsPublic(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Aprende a reciclar")
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.register(t, "Ana", "", "a@x.com", "pw123")
	assert.Equal(t, http.StatusOK, resp.StatusCode) // redirect followed back to the form
	assert.Contains(t, body, "Rellena todos los campos.")
	assert.Empty(t, app.auth.users)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newTestApp(t)

	_, body := app.register(t, "Ana", "Lopez", "a@x.com", "pw123")
	assert.Contains(t, body, "Registro exitoso")

	_, body = app.register(t, "Otra", "Persona", "a@x.com", "secret")
	assert.Contains(t, body, "Ese correo ya está registrado.")
	assert.Len(t, app.auth.users, 1)
	assert.Equal(t, "Ana", app.auth.users["a@x.com"].Nombre)
}

func TestLoginGenericNotice(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Ana", "Lopez", "a@x.com", "pw123")

	_, unknownBody := app.login(t, "nobody@x.com", "pw123")
	_, wrongBody := app.login(t, "a@x.com", "wrong")

	// Unknown email and wrong password produce the same notice
	assert.Contains(t, unknownBody, "Usuario o contraseña incorrectos.")
	assert.Contains(t, wrongBody, "Usuario o contraseña incorrectos.")
}

func TestEndToEndQuizFlow(t *testing.T) {
	app := newTestApp(t)

	_, body := app.register(t, "Ana", "Lopez", "a@x.com", "pw123")
	assert.Contains(t, body, "Registro exitoso")

	_, body = app.login(t, "a@x.com", "pw123")
	assert.Contains(t, body, "Bienvenido, Ana")
	assert.Contains(t, body, "Menú del juego")

	_, body = app.get(t, "/preguntas")
	assert.Contains(t, body, "¿Qué va en la caneca blanca?")

	// Two correct out of three
	_, body = app.postForm(t, "/preguntas", url.Values{
		"q1": {"Vidrio"},
		"q2": {"Plástico"},
		"q3": {"Restos no reciclables"},
	})
	assert.Contains(t, body, "Puntaje guardado: 2")

	_, body = app.get(t, "/historial")
	assert.Contains(t, body, "preguntas")
	assert.Contains(t, body, "<td>2</td>")

	require.Len(t, app.results.rows, 1)
	assert.Equal(t, 2, app.results.rows[0].Score)
	assert.Equal(t, int64(1), app.results.rows[0].UserID)
}

func TestEmptySubmissionScoresZero(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Ana", "Lopez", "a@x.com", "pw123")
	app.login(t, "a@x.com", "pw123")

	_, body := app.postForm(t, "/preguntas", url.Values{})
	assert.Contains(t, body, "Puntaje guardado: 0")
}

func TestHistoryShowsOnlyOwnResults(t *testing.T) {
	app := newTestApp(t)

	// Someone else's scores already on record
	otherID := int64(99)
	app.results.Create(context.Background(), otherID, "preguntas", 3)

	app.register(t, "Ana", "Lopez", "a@x.com", "pw123")
	app.login(t, "a@x.com", "pw123")
	app.postForm(t, "/preguntas", url.Values{"q1": {"Vidrio"}})

	_, body := app.get(t, "/historial")
	assert.Contains(t, body, "<td>1</td>")
	assert.NotContains(t, body, "<td>3</td>")
}

func TestHistoryOrderIsNewestFirst(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Ana", "Lopez", "a@x.com", "pw123")
	app.login(t, "a@x.com", "pw123")

	for i, answers := range []url.Values{
		{},                 // 0
		{"q1": {"Vidrio"}}, // 1
		{"q1": {"Vidrio"}, "q2": {"Orgánico"}, "q3": {"Restos no reciclables"}}, // 3
	} {
		_, body := app.postForm(t, "/preguntas", answers)
		assert.Contains(t, body, "Puntaje guardado", "submission %d", i)
	}

	rows, err := app.results.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	scores := []int{rows[0].Score, rows[1].Score, rows[2].Score}
	assert.Equal(t, []int{3, 1, 0}, scores, "newest first")
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Ana", "Lopez", "a@x.com", "pw123")
	app.login(t, "a@x.com", "pw123")

	_, body := app.get(t, "/logout")
	assert.Contains(t, body, "Sesión cerrada.")

	resp, err := app.client.Get(app.server.URL + "/historial")
	require.NoError(t, err)
	body2, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	// Redirect chain ends at the login page
	assert.Contains(t, string(body2), "Iniciar sesión")
}

func TestMenuRedirectCarriesNotice(t *testing.T) {
	app := newTestApp(t)

	_, body := app.get(t, "/juego")
	assert.Contains(t, body, "Inicia sesión para jugar.")
}

func TestRateLimitedAuthPost(t *testing.T) {
	app := newTestApp(t)
	app.limiter.exceeded = true

	_, body := app.login(t, "a@x.com", "pw123")
	assert.Contains(t, body, "Demasiados intentos")
	assert.Equal(t, 0, app.limiter.recorded, "rejected requests are not counted")
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)
}

func TestFlashShowsOnlyOnce(t *testing.T) {
	app := newTestApp(t)

	_, body := app.register(t, "Ana", "Lopez", "a@x.com", "pw123")
	assert.Contains(t, body, "Registro exitoso")

	_, body = app.get(t, "/login")
	assert.NotContains(t, body, "Registro exitoso")
}
