package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bugseam/ticketing/pkg/config"
	"github.com/bugseam/ticketing/pkg/credstore"
	"github.com/bugseam/ticketing/pkg/linear"
	"github.com/bugseam/ticketing/pkg/metrics"
	"github.com/bugseam/ticketing/pkg/service"
	"github.com/bugseam/ticketing/pkg/ticketing"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// stringList collects repeatable flag values.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <check|create> [flags]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "  check            authenticate and verify the connection")
	fmt.Fprintln(os.Stderr, "  create [flags]   authenticate and create a ticket")
	os.Exit(2)
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting bugseam-ticketing version=%s commit=%s date=%s", version, commit, date)

	if len(os.Args) < 2 {
		usage()
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded successfully")

	// Stage credentials through the store adapter, the same path the
	// desktop application uses with its settings database.
	store := credstore.New(credstore.NewMemoryStore())
	if err := store.Save(ticketing.Credentials{
		APIKey:      cfg.Linear.APIKey,
		TeamID:      cfg.Linear.TeamID,
		WorkspaceID: cfg.Linear.WorkspaceID,
	}); err != nil {
		log.Fatalf("Failed to stage credentials: %v", err)
	}
	creds := store.Load()

	// Initialize the Linear provider
	provider := linear.NewWithConfig(linear.Config{
		Endpoint: cfg.Linear.Endpoint,
		Timeout:  cfg.GetHTTPTimeout(),
	})
	svc := service.New(provider)
	log.Printf("Initialized %s integration", svc.IntegrationName())

	// Initialize metrics publisher if enabled
	if cfg.Metrics.Enabled {
		log.Printf("Metrics publishing enabled: backend=%s", cfg.Metrics.Backend)

		var publisher metrics.Publisher
		var metricsErr error

		switch cfg.Metrics.Backend {
		case "pushgateway":
			publisher, metricsErr = metrics.NewPushgatewayPublisher(metrics.PushgatewayConfig{
				URL:     cfg.Metrics.URL,
				JobName: cfg.Metrics.JobName,
			})
		case "otel":
			publisher, metricsErr = metrics.NewOTelPublisher(metrics.OTelConfig{
				URL:      cfg.Metrics.URL,
				Insecure: cfg.Metrics.OTelInsecure,
			})
		default:
			log.Fatalf("Unknown metrics backend: %s", cfg.Metrics.Backend)
		}

		if metricsErr != nil {
			log.Fatalf("Failed to initialize metrics publisher: %v", metricsErr)
		}

		publisher.RecordBuildInfo(version, commit, date)
		svc.SetMetricsPublisher(publisher)
		log.Printf("Metrics publisher initialized and configured")

		defer func() {
			if err := publisher.Close(); err != nil {
				log.Printf("Warning: failed to close metrics publisher: %v", err)
			}
		}()
	} else {
		log.Println("Metrics publishing disabled")
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "check":
		runCheck(ctx, svc, creds)
	case "create":
		runCreate(ctx, svc, creds, os.Args[2:])
	default:
		usage()
	}
}

func runCheck(ctx context.Context, svc *service.Service, creds ticketing.Credentials) {
	if err := svc.Authenticate(ctx, creds); err != nil {
		fail("Authentication failed", err)
	}
	log.Println("Authentication succeeded")

	status, err := svc.CheckConnection(ctx)
	if err != nil {
		fail("Connection check failed", err)
	}

	log.Println("=== Connection Status ===")
	log.Printf("Integration: %s", status.IntegrationName)
	log.Printf("Connected: %v", status.Connected)
	log.Printf("Message: %s", status.Message)
}

func runCreate(ctx context.Context, svc *service.Service, creds ticketing.Credentials, args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "ticket title (required)")
	description := fs.String("description", "", "ticket description")
	priority := fs.String("priority", "", "priority code 0-4 (0=none, 1=urgent, 2=high, 3=normal, 4=low)")
	assignee := fs.String("assignee", "", "assignee user id")
	state := fs.String("state", "", "workflow state id")
	var attachments stringList
	var labels stringList
	fs.Var(&attachments, "attach", "attachment file path (repeatable)")
	fs.Var(&labels, "label", "label id (repeatable)")
	fs.Parse(args)

	if *title == "" {
		log.Fatal("create: -title is required")
	}

	if err := svc.Authenticate(ctx, creds); err != nil {
		fail("Authentication failed", err)
	}
	log.Println("Authentication succeeded")

	log.Printf("Effective priority: %d", linear.ParsePriority(*priority))

	resp, err := svc.CreateTicket(ctx, ticketing.CreateTicketRequest{
		Title:       *title,
		Description: *description,
		Attachments: attachments,
		Priority:    *priority,
		Labels:      labels,
		AssigneeID:  *assignee,
		StateID:     *state,
	})
	if err != nil {
		fail("Ticket creation failed", err)
	}

	log.Println("=== Ticket Created ===")
	log.Printf("Identifier: %s", resp.Identifier)
	log.Printf("URL: %s", resp.URL)
	log.Printf("Attachments: %d requested", len(resp.AttachmentResults))
	for _, r := range resp.AttachmentResults {
		if r.Success {
			log.Printf("  uploaded: %s", r.FilePath)
		} else {
			log.Printf("  FAILED:   %s (%s)", r.FilePath, r.Message)
		}
	}
}

func fail(prefix string, err error) {
	payload := service.MapError(err)
	log.Printf("%s: kind=%s message=%s", prefix, payload.Kind, payload.Message)
	os.Exit(1)
}
