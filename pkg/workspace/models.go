package workspace

import (
	"github.com/google/uuid"

	"github.com/zunohq/zuno-gateway/pkg/idmclient"
)

// CreateWorkspaceRequest is the payload for creating a workspace
type CreateWorkspaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// InviteMemberRequest is the payload for inviting a member
type InviteMemberRequest struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
}

// MemberListResponse lists the members of a workspace
type MemberListResponse struct {
	Members []idmclient.Member `json:"members"`
	Total   int                `json:"total"`
}

// MessageResponse is a bare confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the error body shape shared by all gateway endpoints
type ErrorResponse struct {
	Error string `json:"error"`
}
