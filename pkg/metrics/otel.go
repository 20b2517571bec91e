package metrics

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// OTelPublisher publishes metrics to an OpenTelemetry collector
type OTelPublisher struct {
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	ctx           context.Context

	// Build info tracking
	buildVersion string
	buildCommit  string
	buildDate    string

	// Metrics for recording
	ticketsCreated    []TicketMetric
	attachmentUploads []UploadMetric
}

// OTelConfig holds configuration for OpenTelemetry
type OTelConfig struct {
	URL      string
	Insecure bool
}

// NewOTelPublisher creates a new OpenTelemetry metrics publisher
func NewOTelPublisher(cfg OTelConfig) (Publisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("otel collector URL is required")
	}

	ctx := context.Background()

	// Create OTLP HTTP exporter
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.URL),
	}

	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	// Create resource with service information
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String("bugseam-ticketing"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Create meter provider
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)

	// Create meter
	meter := meterProvider.Meter("bugseam-ticketing")

	log.Printf("Initialized OpenTelemetry metrics publisher: url=%s, insecure=%v", cfg.URL, cfg.Insecure)

	return &OTelPublisher{
		meterProvider:     meterProvider,
		meter:             meter,
		ctx:               ctx,
		ticketsCreated:    make([]TicketMetric, 0),
		attachmentUploads: make([]UploadMetric, 0),
	}, nil
}

// RecordBuildInfo records version and build information
func (o *OTelPublisher) RecordBuildInfo(version, commit, buildDate string) {
	o.buildVersion = version
	o.buildCommit = commit
	o.buildDate = buildDate
}

// RecordTicketCreated records a ticket created through an integration
func (o *OTelPublisher) RecordTicketCreated(integration, identifier string, createdAt time.Time) {
	o.ticketsCreated = append(o.ticketsCreated, TicketMetric{
		Integration: integration,
		Identifier:  identifier,
		Value:       float64(createdAt.Unix()),
		Timestamp:   createdAt,
	})
}

// RecordAttachmentUpload records the outcome of one attachment upload
func (o *OTelPublisher) RecordAttachmentUpload(integration, filePath string, success bool) {
	o.attachmentUploads = append(o.attachmentUploads, UploadMetric{
		Integration: integration,
		FilePath:    filePath,
		Success:     success,
	})
}

// Push sends all recorded metrics to the OpenTelemetry collector
func (o *OTelPublisher) Push() error {
	log.Println("Pushing metrics to OpenTelemetry collector")

	// Create build info gauge
	if o.buildVersion != "" {
		buildInfo, err := o.meter.Float64ObservableGauge("bugseam_ticketing_build_info",
			metric.WithDescription("Build information for the ticketing client"),
		)
		if err != nil {
			return fmt.Errorf("failed to create build info gauge: %w", err)
		}

		_, err = o.meter.RegisterCallback(
			func(ctx context.Context, obs metric.Observer) error {
				obs.ObserveFloat64(buildInfo, 1,
					metric.WithAttributes(
						attribute.String("version", o.buildVersion),
						attribute.String("commit", o.buildCommit),
						attribute.String("build_date", o.buildDate),
					),
				)
				return nil
			},
			buildInfo,
		)
		if err != nil {
			return fmt.Errorf("failed to register build info callback: %w", err)
		}
	}

	// Record created tickets
	if len(o.ticketsCreated) > 0 {
		ticketCreated, err := o.meter.Float64ObservableGauge("bugseam_ticketing_ticket_created",
			metric.WithDescription("Unix timestamp of when a ticket was created through an integration"),
		)
		if err != nil {
			return fmt.Errorf("failed to create ticket created gauge: %w", err)
		}

		tickets := o.ticketsCreated // Capture for closure
		_, err = o.meter.RegisterCallback(
			func(ctx context.Context, obs metric.Observer) error {
				for _, t := range tickets {
					obs.ObserveFloat64(ticketCreated, t.Value,
						metric.WithAttributes(
							attribute.String("integration", t.Integration),
							attribute.String("identifier", t.Identifier),
						),
					)
				}
				return nil
			},
			ticketCreated,
		)
		if err != nil {
			return fmt.Errorf("failed to register ticket created callback: %w", err)
		}
	}

	// Record attachment upload outcomes
	if len(o.attachmentUploads) > 0 {
		uploadOK, err := o.meter.Float64ObservableGauge("bugseam_ticketing_attachment_upload_ok",
			metric.WithDescription("Whether an attachment upload succeeded (1) or failed (0)"),
		)
		if err != nil {
			return fmt.Errorf("failed to create attachment upload gauge: %w", err)
		}

		uploads := o.attachmentUploads // Capture for closure
		_, err = o.meter.RegisterCallback(
			func(ctx context.Context, obs metric.Observer) error {
				for _, u := range uploads {
					value := 0.0
					if u.Success {
						value = 1.0
					}
					obs.ObserveFloat64(uploadOK, value,
						metric.WithAttributes(
							attribute.String("integration", u.Integration),
							attribute.String("file", u.FilePath),
						),
					)
				}
				return nil
			},
			uploadOK,
		)
		if err != nil {
			return fmt.Errorf("failed to register attachment upload callback: %w", err)
		}
	}

	// Force a flush to ensure metrics are sent
	if err := o.meterProvider.ForceFlush(o.ctx); err != nil {
		return fmt.Errorf("failed to flush metrics: %w", err)
	}

	log.Printf("Successfully pushed metrics to OpenTelemetry collector (tickets=%d, uploads=%d)",
		len(o.ticketsCreated), len(o.attachmentUploads))
	return nil
}

// Close cleans up resources and shuts down the meter provider
func (o *OTelPublisher) Close() error {
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(o.ctx); err != nil {
			return fmt.Errorf("failed to shutdown meter provider: %w", err)
		}
	}
	return nil
}
