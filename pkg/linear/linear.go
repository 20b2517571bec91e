// Package linear implements the ticketing.Integration contract against the
// Linear GraphQL API, including the pre-signed attachment upload flow.
package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bugseam/ticketing/pkg/ticketing"
	"github.com/bugseam/ticketing/pkg/uploader"
)

// DefaultEndpoint is Linear's public GraphQL endpoint.
const DefaultEndpoint = "https://api.linear.app/graphql"

const integrationName = "Linear"

const defaultTimeout = 30 * time.Second

// Linear priority codes: 0 = no priority, 1 = urgent, 2 = high, 3 = normal,
// 4 = low.
const (
	PriorityNone   = 0
	PriorityUrgent = 1
	PriorityHigh   = 2
	PriorityNormal = 3
	PriorityLow    = 4
)

// Client is the Linear provider. It is safe for concurrent use: the
// credential slot is guarded by a read/write lock, so ticket creation and
// connection checks may run concurrently with each other but never observe
// a half-written Authenticate.
type Client struct {
	endpoint   string
	httpClient *http.Client
	uploads    *uploader.Uploader

	mu     sync.RWMutex
	creds  ticketing.Credentials
	authed bool
}

// Config holds configuration for creating a new Linear client.
type Config struct {
	// Endpoint overrides the GraphQL endpoint. Empty means DefaultEndpoint.
	Endpoint string
	// Timeout bounds every GraphQL request. Zero means the 30s default.
	// Attachment byte transfers get a larger bound of their own.
	Timeout time.Duration
}

// New creates a Linear client against the public API endpoint.
func New() *Client {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a Linear client with configuration.
func NewWithConfig(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		uploads: uploader.New(),
	}
}

// Name returns the static provider identifier.
func (c *Client) Name() string {
	return integrationName
}

// GraphQL wire structures
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

type viewerData struct {
	Viewer struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"viewer"`
}

type issueCreateData struct {
	IssueCreate struct {
		Success bool `json:"success"`
		Issue   struct {
			ID         string `json:"id"`
			Identifier string `json:"identifier"`
			URL        string `json:"url"`
		} `json:"issue"`
	} `json:"issueCreate"`
}

type fileUploadData struct {
	FileUpload struct {
		Success    bool `json:"success"`
		UploadFile struct {
			UploadURL string `json:"uploadUrl"`
			AssetURL  string `json:"assetUrl"`
			Headers   []struct {
				Key   string `json:"key"`
				Value string `json:"value"`
			} `json:"headers"`
		} `json:"uploadFile"`
	} `json:"fileUpload"`
}

const viewerQuery = `query Viewer { viewer { id name email } }`

const issueCreateMutation = `mutation IssueCreate($input: IssueCreateInput!) {
  issueCreate(input: $input) {
    success
    issue { id identifier url }
  }
}`

const fileUploadMutation = `mutation FileUpload($contentType: String!, $filename: String!, $size: Int!) {
  fileUpload(contentType: $contentType, filename: $filename, size: $size) {
    success
    uploadFile {
      uploadUrl
      assetUrl
      headers { key value }
    }
  }
}`

// apiError reports a completed exchange the API rejected: a non-2xx status
// or a GraphQL error payload. Transport failures surface as
// ticketing.ErrNetwork instead; call sites map apiError to the kind that
// fits the operation.
type apiError struct {
	detail string
}

func (e *apiError) Error() string {
	return e.detail
}

// execute posts a GraphQL request with the given API key and decodes the
// data payload into out. Messages built from remote responses are redacted
// before they can reach an error.
func (c *Client) execute(ctx context.Context, apiKey, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ticketing.Errorf(ticketing.ErrNetwork, "%s", ticketing.Redact(err.Error(), apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ticketing.Errorf(ticketing.ErrNetwork, "failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := fmt.Sprintf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return &apiError{detail: ticketing.Redact(detail, apiKey)}
	}

	var gr graphqlResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return &apiError{detail: fmt.Sprintf("failed to decode response: %v", err)}
	}
	if len(gr.Errors) > 0 {
		messages := make([]string, 0, len(gr.Errors))
		for _, e := range gr.Errors {
			messages = append(messages, e.Message)
		}
		return &apiError{detail: ticketing.Redact(strings.Join(messages, "; "), apiKey)}
	}

	if out != nil {
		if err := json.Unmarshal(gr.Data, out); err != nil {
			return &apiError{detail: fmt.Sprintf("failed to decode response data: %v", err)}
		}
	}
	return nil
}

// credentials returns a snapshot of the stored credentials. Operations work
// from the snapshot, so a concurrent Authenticate cannot mix two credential
// sets within one call.
func (c *Client) credentials() (ticketing.Credentials, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.creds, c.authed
}

// Authenticate validates the credentials with a viewer query and stores
// them on success. The remote call happens before the write lock is taken,
// so a failed call leaves previously stored credentials untouched and a
// slow validation does not block readers.
func (c *Client) Authenticate(ctx context.Context, creds ticketing.Credentials) error {
	if creds.APIKey == "" {
		return ticketing.Errorf(ticketing.ErrInvalidConfig, "api key is required")
	}

	var out viewerData
	if err := c.execute(ctx, creds.APIKey, viewerQuery, nil, &out); err != nil {
		var ae *apiError
		if errors.As(err, &ae) {
			return ticketing.Errorf(ticketing.ErrAuthenticationFailed, "%s", ae.detail)
		}
		return err
	}

	c.mu.Lock()
	c.creds = creds
	c.authed = true
	c.mu.Unlock()

	log.Printf("linear: authenticated as %s", out.Viewer.Name)
	return nil
}

// CheckConnection re-issues the viewer query with the stored credentials
// without mutating them. With no stored credentials it fails immediately
// instead of attempting a call.
func (c *Client) CheckConnection(ctx context.Context) (*ticketing.ConnectionStatus, error) {
	creds, ok := c.credentials()
	if !ok {
		return nil, ticketing.Errorf(ticketing.ErrConnectionFailed, "no credentials stored; authenticate first")
	}

	var out viewerData
	if err := c.execute(ctx, creds.APIKey, viewerQuery, nil, &out); err != nil {
		var ae *apiError
		if errors.As(err, &ae) {
			return nil, ticketing.Errorf(ticketing.ErrConnectionFailed, "%s", ae.detail)
		}
		return nil, err
	}

	return &ticketing.ConnectionStatus{
		Connected:       true,
		Message:         fmt.Sprintf("connected as %s", out.Viewer.Name),
		IntegrationName: integrationName,
	}, nil
}

// CreateTicket uploads the request's attachments, creates the issue and
// returns per-attachment outcomes. Upload failures never fail the ticket;
// they are reported in the response and noted in the description.
func (c *Client) CreateTicket(ctx context.Context, req ticketing.CreateTicketRequest) (*ticketing.CreateTicketResponse, error) {
	creds, ok := c.credentials()
	if !ok {
		return nil, ticketing.Errorf(ticketing.ErrInvalidConfig, "not authenticated; call Authenticate first")
	}
	if creds.TeamID == "" {
		return nil, ticketing.Errorf(ticketing.ErrInvalidConfig, "team id is required to create Linear issues")
	}

	slots := &slotRequester{client: c, apiKey: creds.APIKey}
	assets, results := c.uploads.UploadAll(ctx, slots, req.Attachments)
	for _, r := range results {
		if !r.Success {
			log.Printf("linear: attachment %s failed: %s", r.FilePath, r.Message)
		}
	}
	for _, a := range assets {
		log.Printf("linear: attachment %s uploaded to %s", a.FilePath, a.AssetURL)
	}

	input := map[string]any{
		"title":       req.Title,
		"description": buildDescription(req.Description, assets, results),
		"teamId":      creds.TeamID,
		"priority":    ParsePriority(req.Priority),
	}
	if len(req.Labels) > 0 {
		input["labelIds"] = req.Labels
	}
	if req.AssigneeID != "" {
		input["assigneeId"] = req.AssigneeID
	}
	if req.StateID != "" {
		input["stateId"] = req.StateID
	}

	var out issueCreateData
	err := c.execute(ctx, creds.APIKey, issueCreateMutation, map[string]any{"input": input}, &out)
	if err != nil {
		var ae *apiError
		if errors.As(err, &ae) {
			// Assets uploaded before this point are not cleaned up.
			return nil, ticketing.Errorf(ticketing.ErrCreationFailed, "%s", ae.detail)
		}
		return nil, err
	}
	if !out.IssueCreate.Success {
		return nil, ticketing.Errorf(ticketing.ErrCreationFailed, "issue creation was rejected by Linear")
	}

	log.Printf("linear: created issue %s", out.IssueCreate.Issue.Identifier)
	return &ticketing.CreateTicketResponse{
		ID:                out.IssueCreate.Issue.ID,
		URL:               out.IssueCreate.Issue.URL,
		Identifier:        out.IssueCreate.Issue.Identifier,
		AttachmentResults: results,
	}, nil
}

// slotRequester issues fileUpload mutations for the uploader. It carries the
// API key snapshot taken at the start of CreateTicket.
type slotRequester struct {
	client *Client
	apiKey string
}

func (s *slotRequester) RequestUploadSlot(ctx context.Context, filename, contentType string, size int) (*uploader.UploadSlot, error) {
	variables := map[string]any{
		"contentType": contentType,
		"filename":    filename,
		"size":        size,
	}
	var out fileUploadData
	if err := s.client.execute(ctx, s.apiKey, fileUploadMutation, variables, &out); err != nil {
		return nil, err
	}
	if !out.FileUpload.Success || out.FileUpload.UploadFile.UploadURL == "" {
		return nil, fmt.Errorf("file upload was rejected")
	}

	headers := make(map[string]string, len(out.FileUpload.UploadFile.Headers))
	for _, h := range out.FileUpload.UploadFile.Headers {
		headers[h.Key] = h.Value
	}
	return &uploader.UploadSlot{
		UploadURL: out.FileUpload.UploadFile.UploadURL,
		AssetURL:  out.FileUpload.UploadFile.AssetURL,
		Headers:   headers,
	}, nil
}

// buildDescription appends a screenshots section for the uploaded assets
// and, when some uploads failed, a note naming the files that could not be
// attached.
func buildDescription(description string, assets []uploader.UploadedAsset, results []ticketing.AttachmentUploadResult) string {
	var b strings.Builder
	b.WriteString(description)

	if len(assets) > 0 {
		b.WriteString("\n\n## Screenshots\n")
		for i, asset := range assets {
			fmt.Fprintf(&b, "\n![Screenshot %d](%s)", i+1, asset.AssetURL)
		}
	}

	var failed []string
	for _, r := range results {
		if !r.Success {
			failed = append(failed, filepath.Base(r.FilePath))
		}
	}
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\n\n**Note:** the following files could not be attached: %s", strings.Join(failed, ", "))
	}

	return b.String()
}

// ParsePriority maps a priority code to Linear's numeric scale. Anything
// non-numeric or out of range means "no priority"; a bad code never fails
// ticket creation.
func ParsePriority(code string) int {
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil || n < PriorityNone || n > PriorityLow {
		return PriorityNone
	}
	return n
}
