// Package service exposes the ticketing operations to the host application
// as plain request/response calls around the single active provider. No
// provider type leaks past this layer; callers see only the value types of
// pkg/ticketing and the serializable ErrorPayload.
package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/bugseam/ticketing/pkg/metrics"
	"github.com/bugseam/ticketing/pkg/ticketing"
)

// Service holds the single active integration behind a concurrency-safe
// handle. One provider is active per process; SetIntegration exists so the
// host can swap providers between sessions without rebuilding the service.
type Service struct {
	mu          sync.RWMutex
	integration ticketing.Integration

	metricsPublisher metrics.Publisher
}

// New creates a service around the given integration. A nil integration is
// allowed; operations then fail fast with invalid_config until
// SetIntegration is called.
func New(integration ticketing.Integration) *Service {
	return &Service{
		integration:      integration,
		metricsPublisher: metrics.NewNoopPublisher(), // Default to no-op
	}
}

// SetMetricsPublisher sets the metrics publisher for the service
func (s *Service) SetMetricsPublisher(publisher metrics.Publisher) {
	s.metricsPublisher = publisher
}

// SetIntegration replaces the active provider. Credentials do not carry
// over; the caller must authenticate the new provider.
func (s *Service) SetIntegration(integration ticketing.Integration) {
	s.mu.Lock()
	s.integration = integration
	s.mu.Unlock()
}

// IntegrationName returns the active provider's identifier, or the empty
// string when none is configured.
func (s *Service) IntegrationName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.integration == nil {
		return ""
	}
	return s.integration.Name()
}

func (s *Service) active() (ticketing.Integration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.integration == nil {
		return nil, ticketing.Errorf(ticketing.ErrInvalidConfig, "no integration configured")
	}
	return s.integration, nil
}

// Authenticate validates and stores credentials on the active provider.
func (s *Service) Authenticate(ctx context.Context, creds ticketing.Credentials) error {
	integration, err := s.active()
	if err != nil {
		return err
	}
	return integration.Authenticate(ctx, creds)
}

// CreateTicket creates a ticket through the active provider and records the
// outcome in metrics. Attachment-level failures are data in the response,
// never an error.
func (s *Service) CreateTicket(ctx context.Context, req ticketing.CreateTicketRequest) (*ticketing.CreateTicketResponse, error) {
	integration, err := s.active()
	if err != nil {
		return nil, err
	}

	resp, err := integration.CreateTicket(ctx, req)
	if err != nil {
		return nil, err
	}

	s.metricsPublisher.RecordTicketCreated(integration.Name(), resp.Identifier, time.Now())
	for _, r := range resp.AttachmentResults {
		s.metricsPublisher.RecordAttachmentUpload(integration.Name(), r.FilePath, r.Success)
	}
	if err := s.metricsPublisher.Push(); err != nil {
		log.Printf("Warning: failed to push metrics: %v", err)
	}

	return resp, nil
}

// CheckConnection verifies the stored credentials. On failure it returns
// both a filled status (connected=false with the failure message) and the
// error, so boundary callers can render either.
func (s *Service) CheckConnection(ctx context.Context) (*ticketing.ConnectionStatus, error) {
	integration, err := s.active()
	if err != nil {
		return &ticketing.ConnectionStatus{Connected: false, Message: "no integration configured"}, err
	}

	status, err := integration.CheckConnection(ctx)
	if err != nil {
		message := err.Error()
		var te *ticketing.Error
		if errors.As(err, &te) {
			message = te.Message
		}
		return &ticketing.ConnectionStatus{
			Connected:       false,
			Message:         message,
			IntegrationName: integration.Name(),
		}, err
	}
	return status, nil
}

// ErrorPayload is the serializable shape of a ticketing failure handed
// across the application boundary.
type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// MapError converts any error returned by the four operations into an
// ErrorPayload. Errors that are not ticketing errors are reported as
// network errors, the only kind a caller can sensibly retry blind.
func MapError(err error) *ErrorPayload {
	if err == nil {
		return nil
	}
	var te *ticketing.Error
	if errors.As(err, &te) {
		return &ErrorPayload{Kind: string(te.Kind), Message: te.Message}
	}
	return &ErrorPayload{Kind: string(ticketing.ErrNetwork), Message: err.Error()}
}
