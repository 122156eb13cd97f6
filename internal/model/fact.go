package model

import "time"

// Fact is one atomic piece of project knowledge. Facts are immutable:
// a change to a fact is expressed as a new Fact plus a Citation, never an
// in-place edit.
type Fact struct {
	PillarID   PillarID  `json:"pillar_id"`
	Value      Value     `json:"value"`
	Source     Source    `json:"source"`
	ProducedAt time.Time `json:"produced_at"`
}

// Citation is an immutable provenance record of one fact-producing or
// fact-changing event. The registry holding citations is append-only.
type Citation struct {
	ID            string    `json:"id"`
	SubjectID     string    `json:"subject_id"`
	Source        Source    `json:"source"`
	Field         string    `json:"field"`
	PreviousValue Value     `json:"previous_value"`
	NewValue      Value     `json:"new_value"`
	Timestamp     time.Time `json:"timestamp"`
}

// CitationType classifies which pillar a citation satisfies for scoring.
// It is derived from the citation's subject and field, not stored.
type CitationType string

const (
	CiteAreaLock     CitationType = "area_lock"
	CiteMaterials    CitationType = "materials"
	CiteBlueprint    CitationType = "blueprint"
	CiteRegulatory   CitationType = "regulatory"
	CiteConflictScan CitationType = "conflict_scan"
	CiteProjectMode  CitationType = "project_mode"
	CiteProjectSize  CitationType = "project_size"
	CiteConfidence   CitationType = "confidence"
	CiteTrades       CitationType = "trades"
	CiteTeamMembers  CitationType = "team_members"
	CiteTasks        CitationType = "tasks"
	CiteContracts    CitationType = "contracts"
	CiteClientInfo   CitationType = "client_info"
	CiteSiteMap      CitationType = "site_map"
	CiteDocuments    CitationType = "documents"
	CiteWeather      CitationType = "weather"
)
