package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/nerve-health/referral/backend/internal/domain/entities"
	"github.com/nerve-health/referral/backend/internal/domain/repositories"
	tsclient "github.com/nerve-health/referral/backend/internal/infrastructure/clients/typesense"
)

// HistorySearchAdapter implements similarity lookup over past triage
// cases using Typesense.
type HistorySearchAdapter struct {
	client *tsclient.Client
}

var _ repositories.TriageHistorySearchRepository = (*HistorySearchAdapter)(nil)

// NewHistorySearchAdapter creates a new history search adapter
func NewHistorySearchAdapter(client *tsclient.Client) *HistorySearchAdapter {
	return &HistorySearchAdapter{client: client}
}

// Index indexes a history entry for text search
func (a *HistorySearchAdapter) Index(ctx context.Context, entry *entities.TriageHistoryEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	document := map[string]interface{}{
		"id":                 entry.ID,
		"chief_complaint":    entry.ChiefComplaint,
		"symptoms":           entry.Symptoms,
		"condition_category": entry.DetectedCondition,
		"severity":           string(entry.Severity),
		"age_group":          string(entry.AgeGroup),
		"hospital_id":        entry.HospitalID,
		"created_at":         createdAt.Unix(),
	}
	if entry.Outcome != nil {
		document["outcome"] = entry.Outcome.PatientOutcome
	}

	if err := a.client.IndexTriageEntry(ctx, document); err != nil {
		return fmt.Errorf("failed to index triage history entry: %w", err)
	}

	return nil
}

// FindSimilar returns past cases whose complaint and symptoms resemble
// the given text. Typesense ranks by text match on complaint first,
// then symptoms.
func (a *HistorySearchAdapter) FindSimilar(ctx context.Context, complaint string, symptoms []string, limit int) ([]*entities.TriageHistoryEntry, error) {
	if limit <= 0 {
		limit = 5
	}

	query := strings.TrimSpace(complaint + " " + strings.Join(symptoms, " "))
	if query == "" {
		return nil, nil
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("chief_complaint,symptoms"),
		PerPage: pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(tsclient.TriageHistoryCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search triage history: %w", err)
	}

	entries := []*entities.TriageHistoryEntry{}
	if result.Hits == nil {
		return entries, nil
	}

	for _, hit := range *result.Hits {
		doc := *hit.Document
		entry := &entities.TriageHistoryEntry{}

		if val, ok := doc["id"].(string); ok {
			entry.ID = val
		}
		if val, ok := doc["chief_complaint"].(string); ok {
			entry.ChiefComplaint = val
		}
		if val, ok := doc["symptoms"].([]interface{}); ok {
			for _, s := range val {
				if str, ok := s.(string); ok {
					entry.Symptoms = append(entry.Symptoms, str)
				}
			}
		}
		if val, ok := doc["condition_category"].(string); ok {
			entry.DetectedCondition = val
		}
		if val, ok := doc["severity"].(string); ok {
			entry.Severity = entities.Severity(val)
		}
		if val, ok := doc["age_group"].(string); ok {
			entry.AgeGroup = entities.AgeGroup(val)
		}
		if val, ok := doc["hospital_id"].(string); ok {
			entry.HospitalID = val
		}
		if val, ok := doc["created_at"].(float64); ok {
			entry.CreatedAt = time.Unix(int64(val), 0)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// Delete removes a history entry from the index
func (a *HistorySearchAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.TriageHistoryCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete triage history entry from index: %w", err)
	}
	return nil
}
