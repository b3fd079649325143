package typesense

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/nerve-health/referral/backend/pkg/config"
	"github.com/nerve-health/referral/backend/pkg/retry"
)

const (
	TriageHistoryCollection = "triage_history"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	// Test connection with retry
	retryConfig := retry.DefaultConfig()
	err := retry.DoWithLog(
		context.Background(),
		retryConfig,
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Printf("Typesense connection attempt %d failed: %v. Retrying in %v...", attempt, err, nextDelay)
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Println("Successfully connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// InitSchema ensures the triage_history collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == TriageHistoryCollection {
			log.Println("Typesense collection 'triage_history' already exists")
			return nil
		}
	}

	schema := &api.CollectionSchema{
		Name: TriageHistoryCollection,
		Fields: []api.Field{
			{
				Name: "id",
				Type: "string",
			},
			{
				Name: "chief_complaint",
				Type: "string",
			},
			{
				Name:     "symptoms",
				Type:     "string[]",
				Optional: pointer.True(),
			},
			{
				Name:  "condition_category",
				Type:  "string",
				Facet: pointer.True(),
			},
			{
				Name:  "severity",
				Type:  "string",
				Facet: pointer.True(),
			},
			{
				Name:  "age_group",
				Type:  "string",
				Facet: pointer.True(),
			},
			{
				Name:     "hospital_id",
				Type:     "string",
				Optional: pointer.True(),
			},
			{
				Name:     "outcome",
				Type:     "string",
				Facet:    pointer.True(),
				Optional: pointer.True(),
			},
			{
				Name: "created_at",
				Type: "int64",
			},
		},
		DefaultSortingField: pointer.String("created_at"),
	}

	_, err = c.client.Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Println("Created Typesense collection 'triage_history'")
	return nil
}

// IndexTriageEntry indexes a triage history document
func (c *Client) IndexTriageEntry(ctx context.Context, document map[string]interface{}) error {
	_, err := c.client.Collection(TriageHistoryCollection).Documents().Upsert(ctx, document)
	return err
}
