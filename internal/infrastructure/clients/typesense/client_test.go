package typesense

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nerve-health/referral/backend/pkg/config"
)

func TestClient_Integration(t *testing.T) {
	if os.Getenv("TEST_INTEGRATION") != "true" {
		t.Skip("Skipping integration test; set TEST_INTEGRATION=true to run")
	}

	cfg := &config.Config{
		Typesense: config.TypesenseConfig{
			URL:    "http://localhost:8108",
			APIKey: "xyz",
		},
	}

	client, err := NewClient(&cfg.Typesense)
	assert.NoError(t, err)
	assert.NotNil(t, client)

	ctx := context.Background()

	err = client.InitSchema(ctx)
	assert.NoError(t, err)

	doc := map[string]interface{}{
		"id":                 "test-triage-1",
		"chief_complaint":    "chest pain radiating to left arm",
		"symptoms":           []string{"sweating", "shortness of breath"},
		"condition_category": "cardiac",
		"severity":           "critical",
		"age_group":          "adult",
		"created_at":         time.Now().Unix(),
	}
	err = client.IndexTriageEntry(ctx, doc)
	assert.NoError(t, err)

	// Allow some time for indexing
	time.Sleep(1 * time.Second)
}
