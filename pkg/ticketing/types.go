package ticketing

import "context"

// Credentials holds the fields a provider needs to talk to its tracker.
// Their meaning is provider-specific: Linear requires TeamID for issue
// creation while other trackers may ignore it entirely. Credentials are
// never persisted by this module; persistence belongs to the host
// application's settings store (see pkg/credstore).
type Credentials struct {
	APIKey      string `json:"api_key"`
	TeamID      string `json:"team_id,omitempty"`
	WorkspaceID string `json:"workspace_id,omitempty"`
}

// CreateTicketRequest describes a bug ticket to create. Attachments are
// local file paths in the order the caller wants them processed.
type CreateTicketRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Attachments []string `json:"attachments,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	AssigneeID  string   `json:"assignee_id,omitempty"`
	StateID     string   `json:"state_id,omitempty"`
}

// AttachmentUploadResult reports the outcome of a single attachment upload.
// Callers correlate results with the request by position or by FilePath.
type AttachmentUploadResult struct {
	FilePath string `json:"file_path"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
}

// CreateTicketResponse is returned when the ticket was created. A ticket is
// created even when every attachment upload failed; AttachmentResults always
// has one entry per requested attachment, in request order.
type CreateTicketResponse struct {
	ID                string                   `json:"id"`
	URL               string                   `json:"url"`
	Identifier        string                   `json:"identifier"`
	AttachmentResults []AttachmentUploadResult `json:"attachment_results"`
}

// ConnectionStatus reports whether the stored credentials are still valid.
type ConnectionStatus struct {
	Connected       bool   `json:"connected"`
	Message         string `json:"message,omitempty"`
	IntegrationName string `json:"integration_name"`
}

// Integration is the contract every tracker provider implements.
// Implementations must be safe for concurrent use: ticket creation and
// connection checks may run concurrently with each other, and a concurrent
// Authenticate must never let either observe half-written credentials.
type Integration interface {
	// Authenticate validates the credentials against the remote tracker and,
	// on success, stores them for subsequent calls. State is all-or-nothing:
	// a failed call leaves any previously stored credentials untouched.
	Authenticate(ctx context.Context, creds Credentials) error

	// CreateTicket uploads the request's attachments, creates the ticket and
	// returns one upload result per requested attachment in request order.
	// Attachment failures never fail the ticket by themselves.
	CreateTicket(ctx context.Context, req CreateTicketRequest) (*CreateTicketResponse, error)

	// CheckConnection confirms the stored credentials are still valid with a
	// lightweight remote call. It must not mutate credential state.
	CheckConnection(ctx context.Context) (*ConnectionStatus, error)

	// Name returns the static provider identifier for logging and UI.
	Name() string
}
