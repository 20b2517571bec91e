package metrics

import "time"

// Publisher defines the interface for metrics publishers
type Publisher interface {
	// RecordBuildInfo records version and build information
	RecordBuildInfo(version, commit, buildDate string)

	// RecordTicketCreated records a ticket created through an integration.
	// integration is the provider name, identifier the human-readable ticket
	// identifier, createdAt when the ticket came back from the tracker.
	RecordTicketCreated(integration, identifier string, createdAt time.Time)

	// RecordAttachmentUpload records the outcome of one attachment upload.
	RecordAttachmentUpload(integration, filePath string, success bool)

	// Push sends all recorded metrics to the backend
	// This should be called after all metrics have been recorded
	Push() error

	// Close cleans up any resources used by the publisher
	Close() error
}

// TicketMetric represents a metric associated with a created ticket
type TicketMetric struct {
	Integration string
	Identifier  string
	Value       float64
	Timestamp   time.Time
}

// UploadMetric represents the outcome of a single attachment upload
type UploadMetric struct {
	Integration string
	FilePath    string
	Success     bool
}

// BuildInfo represents version and build information
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}
