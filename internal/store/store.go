// Package store persists project records and the citation log. Stored
// derived fields are treated as cache only; the engine re-derives
// summaries and scores locally rather than trusting them.
package store

import (
	"context"
	"time"

	"github.com/buildlane/sitetruth/internal/model"
)

// ProjectRecord is the persisted shape of one project's raw state.
// Derived values (financial summary, health score, truth matrix) are
// intentionally absent.
type ProjectRecord struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	Trade           string                   `json:"trade"`
	ConfirmedArea   float64                  `json:"confirmed_area"`
	TeamMemberCount int                      `json:"team_member_count"`
	LaborCost       float64                  `json:"labor_cost"`
	OtherCost       float64                  `json:"other_cost"`
	ApprovedBudget  float64                  `json:"approved_budget"`
	Draft           bool                     `json:"draft"`
	Items           []model.MaterialLineItem `json:"items"`
	Facts           []model.Fact             `json:"facts"`
	Tasks           []model.Task             `json:"tasks"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// Store defines the persistence interface for the reconciliation engine.
// Citations are insert-only: no implementation exposes update or delete.
type Store interface {
	SaveProject(ctx context.Context, rec *ProjectRecord) error
	GetProject(ctx context.Context, projectID string) (*ProjectRecord, error)

	AppendCitation(ctx context.Context, projectID string, c model.Citation) error
	ListCitations(ctx context.Context, projectID string) ([]model.Citation, error)

	Migrate(ctx context.Context) error
	Close() error
}
