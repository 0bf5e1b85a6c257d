package rest_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zlutov/notepad/api"
	"github.com/zlutov/notepad/api/rest"
	"github.com/zlutov/notepad/cache"
	cachemocks "github.com/zlutov/notepad/cache/mocks"
	"github.com/zlutov/notepad/models"
	"github.com/zlutov/notepad/service"
	"github.com/zlutov/notepad/store"
	storemocks "github.com/zlutov/notepad/store/mocks"
	"golang.org/x/crypto/bcrypt"
)

var (
	testAccessSecret  = []byte("access-secret")
	testRefreshSecret = []byte("refresh-secret")
)

// Helper to build the full route table on top of mocked store and cache
func setupMux(t *testing.T) (*http.ServeMux, *storemocks.MockStore, *cachemocks.MockCache) {
	mockStore := new(storemocks.MockStore)
	mockCache := new(cachemocks.MockCache)

	notepadAPI, err := api.NewNotepadAPI(mockStore, mockCache, testAccessSecret, testRefreshSecret, rest.CookieConfig{
		SameSite: http.SameSiteLaxMode,
	})
	assert.NoError(t, err)

	mux := http.NewServeMux()
	notepadAPI.RegisterRoutes(mux)
	return mux, mockStore, mockCache
}

// Mints tokens with the same secrets the mux verifies against
func testTokenService(t *testing.T) *service.Service {
	svc, err := service.NewService(new(storemocks.MockStore), new(cachemocks.MockCache), testAccessSecret, testRefreshSecret)
	assert.NoError(t, err)
	return svc
}

func doRequest(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestHealth(t *testing.T) {
	mux, _, _ := setupMux(t)

	rec := doRequest(mux, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutes_NoToken(t *testing.T) {
	mux, _, _ := setupMux(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/get-user"},
		{http.MethodPost, "/add-note"},
		{http.MethodPut, "/edit-note/n1"},
		{http.MethodPut, "/update-note-pinned/n1"},
		{http.MethodGet, "/get-all-notes"},
		{http.MethodGet, "/search-notes?query=x"},
		{http.MethodDelete, "/delete-note/n1"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := doRequest(mux, httptest.NewRequest(route.method, route.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestProtectedRoutes_InvalidToken(t *testing.T) {
	mux, _, _ := setupMux(t)

	req := httptest.NewRequest(http.MethodGet, "/get-all-notes", nil)
	req.Header.Set("Authorization", "Bearer garbage")

	rec := doRequest(mux, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAccount_SetsAuthCookies(t *testing.T) {
	mux, mockStore, _ := setupMux(t)

	mockStore.On("CreateUser", mock.Anything, mock.AnythingOfType("models.User")).
		Return(models.User{Id: "u1", FullName: "Jane Doe", Email: "jane@example.com"}, nil)

	body := `{"fullName":"Jane Doe","email":"jane@example.com","password":"secret123"}`
	rec := doRequest(mux, httptest.NewRequest(http.MethodPost, "/create-account", strings.NewReader(body)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	access := cookieByName(t, rec, "accessToken")
	assert.True(t, access.HttpOnly)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, 600, access.MaxAge)
	assert.NotEmpty(t, access.Value)

	refresh := cookieByName(t, rec, "refreshToken")
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, 7*24*3600, refresh.MaxAge)

	// The password hash never leaves the server
	assert.NotContains(t, rec.Body.String(), "passwordHash")
	assert.Contains(t, rec.Body.String(), "jane@example.com")
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	mux, mockStore, _ := setupMux(t)

	mockStore.On("CreateUser", mock.Anything, mock.AnythingOfType("models.User")).
		Return(models.User{}, store.ErrItemExists)

	body := `{"fullName":"Jane Doe","email":"jane@example.com","password":"secret123"}`
	rec := doRequest(mux, httptest.NewRequest(http.MethodPost, "/create-account", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mux, mockStore, _ := setupMux(t)

	mockStore.On("GetUserByEmail", mock.Anything, "jane@example.com").
		Return(models.User{}, store.ErrItemNotFound)

	body := `{"email":"jane@example.com","password":"secret123"}`
	rec := doRequest(mux, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestLogin_Success(t *testing.T) {
	mux, mockStore, _ := setupMux(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	mockStore.On("GetUserByEmail", mock.Anything, "jane@example.com").
		Return(models.User{Id: "u1", Email: "jane@example.com", PasswordHash: string(hash)}, nil)

	body := `{"email":"jane@example.com","password":"secret123"}`
	rec := doRequest(mux, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	cookieByName(t, rec, "accessToken")
	cookieByName(t, rec, "refreshToken")
}

func TestLogout_ClearsCookies(t *testing.T) {
	mux, _, _ := setupMux(t)

	rec := doRequest(mux, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, name := range []string{"accessToken", "refreshToken"} {
		c := cookieByName(t, rec, name)
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
		// The clear must target the same path the set used
		assert.Equal(t, "/", c.Path)
		assert.True(t, c.HttpOnly)
	}
}

func TestRefresh_IssuesNewAccessCookie(t *testing.T) {
	mux, mockStore, _ := setupMux(t)
	tokens := testTokenService(t)

	refreshToken, err := tokens.IssueRefreshToken("u1")
	assert.NoError(t, err)

	mockStore.On("GetUserById", mock.Anything, "u1").Return(models.User{Id: "u1"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refreshToken})

	rec := doRequest(mux, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(t, rec, "accessToken")
	subject, _, err := tokens.VerifyAccessToken(access.Value)
	assert.NoError(t, err)
	assert.Equal(t, "u1", subject)
}

func TestRefresh_MissingCookie(t *testing.T) {
	mux, _, _ := setupMux(t)

	rec := doRequest(mux, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	mux, _, _ := setupMux(t)
	tokens := testTokenService(t)

	// An access token in the refresh cookie must not pass
	accessToken, _ := tokens.IssueAccessToken("u1")

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: accessToken})

	rec := doRequest(mux, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUser_CookieAndBearerBothAccepted(t *testing.T) {
	mux, mockStore, _ := setupMux(t)
	tokens := testTokenService(t)

	accessToken, _ := tokens.IssueAccessToken("u1")
	mockStore.On("GetUserById", mock.Anything, "u1").
		Return(models.User{Id: "u1", FullName: "Jane Doe"}, nil)

	withCookie := httptest.NewRequest(http.MethodGet, "/get-user", nil)
	withCookie.AddCookie(&http.Cookie{Name: "accessToken", Value: accessToken})
	rec := doRequest(mux, withCookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane Doe")

	withBearer := httptest.NewRequest(http.MethodGet, "/get-user", nil)
	withBearer.Header.Set("Authorization", "Bearer "+accessToken)
	rec = doRequest(mux, withBearer)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane Doe")
}

func TestGetUser_SubjectGone(t *testing.T) {
	mux, mockStore, _ := setupMux(t)
	tokens := testTokenService(t)

	accessToken, _ := tokens.IssueAccessToken("deleted")
	mockStore.On("GetUserById", mock.Anything, "deleted").
		Return(models.User{}, store.ErrItemNotFound)

	req := httptest.NewRequest(http.MethodGet, "/get-user", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	rec := doRequest(mux, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateNotePinned_NonBoolean(t *testing.T) {
	mux, mockStore, _ := setupMux(t)
	tokens := testTokenService(t)

	accessToken, _ := tokens.IssueAccessToken("u1")

	cases := []string{
		`{"isPinned":"yes"}`,
		`{"isPinned":1}`,
		`{}`,
	}

	for _, body := range cases {
		t.Run(body, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/update-note-pinned/n1", strings.NewReader(body))
			req.Header.Set("Authorization", "Bearer "+accessToken)

			rec := doRequest(mux, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "isPinned must be a boolean value")
		})
	}

	mockStore.AssertNotCalled(t, "UpdateNote", mock.Anything, mock.Anything, mock.Anything)
}

func TestEditNote_ForeignNote(t *testing.T) {
	mux, mockStore, _ := setupMux(t)
	tokens := testTokenService(t)

	accessToken, _ := tokens.IssueAccessToken("u1")

	mockStore.On("UpdateNote", mock.Anything, mock.AnythingOfType("models.Note"), mock.AnythingOfType("[]string")).
		Return(models.Note{}, store.ErrItemNotFound)

	req := httptest.NewRequest(http.MethodPut, "/edit-note/someone-elses", strings.NewReader(`{"title":"hijack"}`))
	req.Header.Set("Authorization", "Bearer "+accessToken)

	rec := doRequest(mux, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Note not found")
}

func TestSearchNotes_BlankQuery(t *testing.T) {
	mux, _, _ := setupMux(t)
	tokens := testTokenService(t)

	accessToken, _ := tokens.IssueAccessToken("u1")

	req := httptest.NewRequest(http.MethodGet, "/search-notes", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	rec := doRequest(mux, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNoteLifecycle(t *testing.T) {
	mux, mockStore, mockCache := setupMux(t)

	// Register
	mockStore.On("CreateUser", mock.Anything, mock.AnythingOfType("models.User")).
		Return(models.User{Id: "u1", Email: "jane@example.com"}, nil).Once()

	body := `{"fullName":"Jane Doe","email":"jane@example.com","password":"secret123"}`
	rec := doRequest(mux, httptest.NewRequest(http.MethodPost, "/create-account", strings.NewReader(body)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	access := cookieByName(t, rec, "accessToken")

	authed := func(method, path, body string) *http.Request {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		req.AddCookie(access)
		return req
	}

	// Add a note
	note := models.Note{Id: "n1", UserId: "u1", Title: "Gym", Content: "At 6am", Tags: []string{}}
	mockStore.On("CreateNote", mock.Anything, mock.AnythingOfType("models.Note")).
		Return(note, nil).Once()
	mockCache.On("InvalidateNoteList", mock.Anything, "u1").Return(nil)

	rec = doRequest(mux, authed(http.MethodPost, "/add-note", `{"title":"Gym","content":"At 6am"}`))
	assert.Equal(t, http.StatusCreated, rec.Code)

	// List sees it
	mockCache.On("GetNoteList", mock.Anything, "u1").Return(nil, cache.ErrCacheMiss)
	mockCache.On("SetNoteList", mock.Anything, "u1", mock.AnythingOfType("[]uint8")).Return(nil)
	mockStore.On("ListNotes", mock.Anything, "u1").Return([]models.Note{note}, nil).Once()

	rec = doRequest(mux, authed(http.MethodGet, "/get-all-notes", ""))
	assert.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		Notes []models.Note `json:"notes"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed.Notes, 1)
	assert.Equal(t, "Gym", listed.Notes[0].Title)

	// Delete, then the list is empty again
	mockStore.On("DeleteNote", mock.Anything, "u1", "n1").Return(nil).Once()
	rec = doRequest(mux, authed(http.MethodDelete, "/delete-note/n1", ""))
	assert.Equal(t, http.StatusOK, rec.Code)

	mockStore.On("ListNotes", mock.Anything, "u1").Return([]models.Note{}, nil).Once()
	rec = doRequest(mux, authed(http.MethodGet, "/get-all-notes", ""))
	assert.Equal(t, http.StatusOK, rec.Code)

	listed.Notes = nil
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed.Notes)

	mockStore.AssertExpectations(t)
}
