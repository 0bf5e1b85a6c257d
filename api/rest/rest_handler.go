package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/zlutov/notepad/models"
	"github.com/zlutov/notepad/service"
)

type Handler struct {
	Service *service.Service
	Cookies CookieConfig
}

func NewHandler(svc *service.Service, cookies CookieConfig) *Handler {
	return &Handler{Service: svc, Cookies: cookies}
}

type createAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	User    models.User `json:"user"`
}

func (h *Handler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Service.Register(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if !h.issueAuthCookies(w, user.Id) {
		return
	}

	h.sendResponse(w, http.StatusCreated, userResponse{
		Message: "Registration successful",
		User:    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Service.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if !h.issueAuthCookies(w, user.Id) {
		return
	}

	h.sendResponse(w, http.StatusOK, userResponse{
		Message: "Login successful",
		User:    user,
	})
}

type logoutResponse struct {
	Message string `json:"message"`
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearTokenCookie(w, accessTokenCookie)
	h.clearTokenCookie(w, refreshTokenCookie)
	h.sendResponse(w, http.StatusOK, logoutResponse{Message: "Logged out"})
}

type refreshResponse struct {
	OK bool `json:"ok"`
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		h.sendError(w, http.StatusUnauthorized, "No refresh token")
		return
	}

	accessToken, err := h.Service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			h.sendError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		h.handleServiceError(w, err)
		return
	}

	h.setTokenCookie(w, accessTokenCookie, accessToken, service.AccessTokenTTL)
	h.sendResponse(w, http.StatusOK, refreshResponse{OK: true})
}

type getUserResponse struct {
	User models.User `json:"user"`
}

func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.GetUser(r.Context(), userIdFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// The token subject no longer resolves to an account
			h.sendError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		h.handleServiceError(w, err)
		return
	}

	h.sendResponse(w, http.StatusOK, getUserResponse{User: user})
}

type addNoteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type noteResponse struct {
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Note    models.Note `json:"note"`
}

func (h *Handler) HandleAddNote(w http.ResponseWriter, r *http.Request) {
	var req addNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.Service.CreateNote(r.Context(), userIdFromContext(r.Context()), req.Title, req.Content, req.Tags)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendResponse(w, http.StatusCreated, noteResponse{
		Message: "Note added successfully",
		Note:    note,
	})
}

type editNoteRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Tags     *[]string `json:"tags"`
	IsPinned *bool     `json:"isPinned"`
}

func (h *Handler) HandleEditNote(w http.ResponseWriter, r *http.Request) {
	var req editNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := models.NotePatch{
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		IsPinned: req.IsPinned,
	}

	note, err := h.Service.UpdateNote(r.Context(), userIdFromContext(r.Context()), r.PathValue("id"), patch)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendResponse(w, http.StatusOK, noteResponse{
		Message: "Note updated successfully",
		Note:    note,
	})
}

type updatePinnedRequest struct {
	IsPinned *bool `json:"isPinned"`
}

func (h *Handler) HandleUpdateNotePinned(w http.ResponseWriter, r *http.Request) {
	var req updatePinnedRequest
	// Strict decode: a string or number in isPinned fails here rather than
	// being coerced
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsPinned == nil {
		h.sendError(w, http.StatusBadRequest, "isPinned must be a boolean value")
		return
	}

	note, err := h.Service.SetPinned(r.Context(), userIdFromContext(r.Context()), r.PathValue("id"), *req.IsPinned)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	message := "Note unpinned successfully"
	if note.IsPinned {
		message = "Note pinned successfully"
	}
	h.sendResponse(w, http.StatusOK, noteResponse{
		Message: message,
		Note:    note,
	})
}

type notesResponse struct {
	Error bool          `json:"error"`
	Notes []models.Note `json:"notes"`
}

func (h *Handler) HandleGetAllNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Service.ListNotes(r.Context(), userIdFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendResponse(w, http.StatusOK, notesResponse{Notes: notes})
}

func (h *Handler) HandleSearchNotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	notes, err := h.Service.SearchNotes(r.Context(), userIdFromContext(r.Context()), query)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendResponse(w, http.StatusOK, notesResponse{Notes: notes})
}

type deleteNoteResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func (h *Handler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	err := h.Service.DeleteNote(r.Context(), userIdFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendResponse(w, http.StatusOK, deleteNoteResponse{Message: "Note deleted successfully"})
}

// issueAuthCookies mints both tokens for the user and delivers them as
// cookies. Reports whether it succeeded; on failure the 500 has already
// been written.
func (h *Handler) issueAuthCookies(w http.ResponseWriter, userId string) bool {
	accessToken, err := h.Service.IssueAccessToken(userId)
	if err != nil {
		log.Printf("Failed to issue access token: %v", err)
		h.sendError(w, http.StatusInternalServerError, "Internal Server Error")
		return false
	}

	refreshToken, err := h.Service.IssueRefreshToken(userId)
	if err != nil {
		log.Printf("Failed to issue refresh token: %v", err)
		h.sendError(w, http.StatusInternalServerError, "Internal Server Error")
		return false
	}

	h.setTokenCookie(w, accessTokenCookie, accessToken, service.AccessTokenTTL)
	h.setTokenCookie(w, refreshTokenCookie, refreshToken, service.RefreshTokenTTL)
	return true
}

type errorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		h.sendError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		h.sendError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrInvalidToken):
		h.sendError(w, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, service.ErrNoteNotFound):
		h.sendError(w, http.StatusNotFound, "Note not found")
	case errors.Is(err, service.ErrEmailTaken):
		h.sendError(w, http.StatusConflict, "User already exists")
	default:
		log.Printf("Internal error: %v", err)
		h.sendError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func (h *Handler) sendResponse(w http.ResponseWriter, status int, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func (h *Handler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendResponse(w, status, errorResponse{Error: true, Message: message})
}
