package metrics

import "time"

// NoopPublisher is a metrics publisher that does nothing
// Used when metrics are disabled (the default)
type NoopPublisher struct{}

// NewNoopPublisher creates a new no-op publisher
func NewNoopPublisher() Publisher {
	return &NoopPublisher{}
}

// RecordBuildInfo does nothing
func (n *NoopPublisher) RecordBuildInfo(version, commit, buildDate string) {
	// No-op
}

// RecordTicketCreated does nothing
func (n *NoopPublisher) RecordTicketCreated(integration, identifier string, createdAt time.Time) {
	// No-op
}

// RecordAttachmentUpload does nothing
func (n *NoopPublisher) RecordAttachmentUpload(integration, filePath string, success bool) {
	// No-op
}

// Push does nothing
func (n *NoopPublisher) Push() error {
	return nil
}

// Close does nothing
func (n *NoopPublisher) Close() error {
	return nil
}
