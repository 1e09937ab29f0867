package httpapi

import (
	"net/http"
	"strings"

	"jobgrid.org/internal/audit"
	"jobgrid.org/internal/board"
)

func (a *API) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	cats, err := a.store.Categories().List(r.Context())
	if err != nil {
		handleBoardError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": cats,
		"total": len(cats),
	})
}

func (a *API) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if actor := a.requireRole(w, r, board.UserTypeAdmin); actor == nil {
		return
	}

	users, err := a.store.Users().List(r.Context())
	if err != nil {
		handleBoardError(w, r, err)
		return
	}
	// Password hashes never leave the service.
	type adminUser struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		FullName  string `json:"full_name"`
		UserType  string `json:"user_type"`
		Verified  bool   `json:"verified"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]adminUser, len(users))
	for i, u := range users {
		out[i] = adminUser{
			ID:        u.ID,
			Email:     u.Email,
			Phone:     u.Phone,
			FullName:  u.FullName,
			UserType:  string(u.UserType),
			Verified:  u.AuthUserID != "",
			CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": len(out),
	})
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (a *API) handleAdminCategoriesCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if actor := a.requireRole(w, r, board.UserTypeAdmin); actor == nil {
		return
	}

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	cat := &board.Category{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := a.store.Categories().Create(r.Context(), cat); err != nil {
		handleBoardError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "category.create", map[string]any{"category_id": cat.ID, "name": cat.Name})
	writeJSON(w, http.StatusCreated, cat)
}

func (a *API) handleAdminCategoryResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/admin/categories/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if actor := a.requireRole(w, r, board.UserTypeAdmin); actor == nil {
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req categoryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, r, http.StatusBadRequest, "name is required")
			return
		}
		cat := &board.Category{ID: id, Name: strings.TrimSpace(req.Name), Description: req.Description}
		if err := a.store.Categories().Update(r.Context(), cat); err != nil {
			handleBoardError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "category.update", map[string]any{"category_id": id})
		writeJSON(w, http.StatusOK, cat)
	case http.MethodDelete:
		if err := a.store.Categories().Delete(r.Context(), id); err != nil {
			handleBoardError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "category.delete", map[string]any{"category_id": id})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodPut, http.MethodDelete)
	}
}
