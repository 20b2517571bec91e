package metrics

import (
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushgatewayPublisher publishes metrics to a Prometheus Pushgateway
type PushgatewayPublisher struct {
	url      string
	jobName  string
	registry *prometheus.Registry

	// Metrics
	buildInfo        *prometheus.GaugeVec
	ticketCreated    *prometheus.GaugeVec
	attachmentUpload *prometheus.GaugeVec
}

// PushgatewayConfig holds configuration for Pushgateway
type PushgatewayConfig struct {
	URL     string
	JobName string
}

// NewPushgatewayPublisher creates a new Pushgateway metrics publisher
func NewPushgatewayPublisher(cfg PushgatewayConfig) (Publisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("pushgateway URL is required")
	}

	if cfg.JobName == "" {
		cfg.JobName = "bugseam_ticketing"
	}

	// Create a new registry for this publisher
	registry := prometheus.NewRegistry()

	// Create metrics
	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bugseam_ticketing_build_info",
			Help: "Build information for the ticketing client including version, commit, and build date",
		},
		[]string{"version", "commit", "build_date"},
	)

	ticketCreated := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bugseam_ticketing_ticket_created",
			Help: "Unix timestamp of when a ticket was created through an integration",
		},
		[]string{"integration", "identifier"},
	)

	attachmentUpload := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bugseam_ticketing_attachment_upload_ok",
			Help: "Whether an attachment upload succeeded (1) or failed (0)",
		},
		[]string{"integration", "file"},
	)

	// Register metrics
	registry.MustRegister(buildInfo)
	registry.MustRegister(ticketCreated)
	registry.MustRegister(attachmentUpload)

	log.Printf("Initialized Pushgateway metrics publisher: url=%s, job=%s", cfg.URL, cfg.JobName)

	return &PushgatewayPublisher{
		url:              cfg.URL,
		jobName:          cfg.JobName,
		registry:         registry,
		buildInfo:        buildInfo,
		ticketCreated:    ticketCreated,
		attachmentUpload: attachmentUpload,
	}, nil
}

// RecordBuildInfo records version and build information
func (p *PushgatewayPublisher) RecordBuildInfo(version, commit, buildDate string) {
	p.buildInfo.WithLabelValues(version, commit, buildDate).Set(1)
}

// RecordTicketCreated records a ticket created through an integration
func (p *PushgatewayPublisher) RecordTicketCreated(integration, identifier string, createdAt time.Time) {
	p.ticketCreated.WithLabelValues(integration, identifier).Set(float64(createdAt.Unix()))
}

// RecordAttachmentUpload records the outcome of one attachment upload
func (p *PushgatewayPublisher) RecordAttachmentUpload(integration, filePath string, success bool) {
	value := 0.0
	if success {
		value = 1.0
	}
	p.attachmentUpload.WithLabelValues(integration, filePath).Set(value)
}

// Push sends all recorded metrics to the Pushgateway
func (p *PushgatewayPublisher) Push() error {
	log.Printf("Pushing metrics to Pushgateway: %s", p.url)

	pusher := push.New(p.url, p.jobName).
		Gatherer(p.registry)

	if err := pusher.Push(); err != nil {
		return fmt.Errorf("failed to push metrics to pushgateway: %w", err)
	}

	log.Println("Successfully pushed metrics to Pushgateway")
	return nil
}

// Close cleans up any resources
func (p *PushgatewayPublisher) Close() error {
	// No cleanup needed for Pushgateway
	return nil
}
