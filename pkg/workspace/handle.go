package workspace

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/zunohq/zuno-gateway/pkg/idmclient"
	"github.com/zunohq/zuno-gateway/pkg/session"
)

// Valid member roles an invitation can grant
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Handle proxies workspace and subscription requests to the Identity &
// Workspace API, forwarding the session token from the cookie as the bearer
// credential. It is mounted behind session.RequireSession.
type Handle struct {
	client     *idmclient.Client
	cookieName string
}

// NewHandle creates a new workspace handler
func NewHandle(client *idmclient.Client, cookieName string) *Handle {
	if cookieName == "" {
		cookieName = session.DefaultCookieName
	}
	return &Handle{client: client, cookieName: cookieName}
}

// RegisterRoutes registers the workspace and subscription routes
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/workspaces", func(r chi.Router) {
		r.Post("/create", h.CreateWorkspace)
		r.Post("/invite", h.InviteMember)
		r.Get("/{workspaceID}/members", h.ListMembers)
	})
	r.Get("/subscription/current-plan-details", h.CurrentPlan)
}

// CreateWorkspace handles POST /workspaces/create
func (h *Handle) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Name == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Workspace name is required"})
		return
	}

	ws, err := h.client.CreateWorkspace(r.Context(), h.token(r), idmclient.CreateWorkspaceParams{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		renderUpstreamError(w, r, err, "Failed to create workspace")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, ws)
}

// InviteMember handles POST /workspaces/invite
func (h *Handle) InviteMember(w http.ResponseWriter, r *http.Request) {
	var req InviteMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Email == "" || req.WorkspaceID == uuid.Nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Workspace and email are required"})
		return
	}
	if req.Role != RoleAdmin && req.Role != RoleMember {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Role must be admin or member"})
		return
	}

	err := h.client.InviteMember(r.Context(), h.token(r), idmclient.InviteMemberParams{
		WorkspaceID: req.WorkspaceID,
		Email:       req.Email,
		Role:        req.Role,
	})
	if err != nil {
		renderUpstreamError(w, r, err, "Failed to send invitation")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Invitation sent"})
}

// ListMembers handles GET /workspaces/{workspaceID}/members
func (h *Handle) ListMembers(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := uuid.Parse(chi.URLParam(r, "workspaceID"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid workspace id"})
		return
	}

	members, err := h.client.ListMembers(r.Context(), h.token(r), workspaceID)
	if err != nil {
		renderUpstreamError(w, r, err, "Failed to list members")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MemberListResponse{Members: members, Total: len(members)})
}

// CurrentPlan handles GET /subscription/current-plan-details
func (h *Handle) CurrentPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.client.CurrentPlan(r.Context(), h.token(r))
	if err != nil {
		renderUpstreamError(w, r, err, "Failed to fetch plan details")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, plan)
}

func (h *Handle) token(r *http.Request) string {
	return session.TokenFromCookie(r, h.cookieName)
}

func renderUpstreamError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var apiErr *idmclient.APIError
	if errors.As(err, &apiErr) {
		render.Status(r, apiErr.StatusCode)
		render.JSON(w, r, ErrorResponse{Error: apiErr.Message})
		return
	}
	slog.Error("identity api request failed", "err", err)
	render.Status(r, http.StatusBadGateway)
	render.JSON(w, r, ErrorResponse{Error: fallback})
}
