package search

import (
	"context"
	"fmt"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/wahealth/sca-simulator/internal/domain/entities"
	"github.com/wahealth/sca-simulator/internal/domain/repositories"
	tsclient "github.com/wahealth/sca-simulator/internal/infrastructure/clients/typesense"
)

const collectionName = tsclient.CasesCollection

// TypesenseAdapter implements case search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements CaseSearchRepository
var _ repositories.CaseSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Index indexes a case
func (a *TypesenseAdapter) Index(ctx context.Context, c *entities.Case) error {
	document := map[string]interface{}{
		"id":                   c.ID,
		"case_number":          c.CaseNumber,
		"patient_name":         c.PatientName,
		"presenting_complaint": c.PresentingComplaint,
		"notes":                c.Notes,
		"created_at":           c.CreatedAt.Unix(),
	}

	_, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to index case: %w", err)
	}

	return nil
}

// Delete removes a case from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(collectionName).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete case from index: %w", err)
	}
	return nil
}

// Search finds cases matching the query across case number, presenting
// complaint and patient name
func (a *TypesenseAdapter) Search(ctx context.Context, query string, limit int) ([]entities.CaseSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("case_number,presenting_complaint,patient_name,notes"),
		PerPage: pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search cases: %w", err)
	}

	summaries := []entities.CaseSummary{}
	if result.Hits == nil {
		return summaries, nil
	}

	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document

		summary := entities.CaseSummary{
			ID:                  docString(doc, "id"),
			CaseNumber:          docString(doc, "case_number"),
			PatientName:         docString(doc, "patient_name"),
			PresentingComplaint: docString(doc, "presenting_complaint"),
			Notes:               docString(doc, "notes"),
		}
		if createdAt, ok := doc["created_at"].(float64); ok {
			summary.CreatedAt = time.Unix(int64(createdAt), 0)
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func docString(doc map[string]interface{}, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}
