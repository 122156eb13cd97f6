package model

// PillarID names one category of project fact tracked for completeness
// and cross-engine verification.
type PillarID string

// Solo pillars apply to every project.
const (
	PillarConfirmedArea PillarID = "confirmed_area"
	PillarMaterials     PillarID = "materials"
	PillarBlueprint     PillarID = "blueprint"
	PillarOBCCompliance PillarID = "obc_compliance"
	PillarConflictCheck PillarID = "conflict_check"
	PillarProjectMode   PillarID = "project_mode"
	PillarProjectSize   PillarID = "project_size"
	PillarConfidence    PillarID = "confidence"
)

// Team pillars apply only when the project has team members.
const (
	PillarTrades      PillarID = "trades"
	PillarTeamMembers PillarID = "team_members"
	PillarTasks       PillarID = "tasks"
	PillarContracts   PillarID = "contracts"
	PillarClientInfo  PillarID = "client_info"
	PillarSiteMap     PillarID = "site_map"
	PillarDocuments   PillarID = "documents"
	PillarWeather     PillarID = "weather"
)

// SoloPillars lists the pillars scored in every project mode, in display order.
var SoloPillars = []PillarID{
	PillarConfirmedArea,
	PillarMaterials,
	PillarBlueprint,
	PillarOBCCompliance,
	PillarConflictCheck,
	PillarProjectMode,
	PillarProjectSize,
	PillarConfidence,
}

// TeamPillars lists the pillars scored only in team mode, in display order.
var TeamPillars = []PillarID{
	PillarTrades,
	PillarTeamMembers,
	PillarTasks,
	PillarContracts,
	PillarClientInfo,
	PillarSiteMap,
	PillarDocuments,
	PillarWeather,
}

// AllPillars returns the full 16-pillar taxonomy in display order.
func AllPillars() []PillarID {
	out := make([]PillarID, 0, len(SoloPillars)+len(TeamPillars))
	out = append(out, SoloPillars...)
	out = append(out, TeamPillars...)
	return out
}

// TeamOnly reports whether the pillar is excluded from solo-mode scoring.
func (p PillarID) TeamOnly() bool {
	for _, tp := range TeamPillars {
		if p == tp {
			return true
		}
	}
	return false
}

// VerificationStatus is the per-engine verification state of a pillar.
type VerificationStatus string

const (
	StatusVerified VerificationStatus = "verified"
	StatusConflict VerificationStatus = "conflict"
	StatusPending  VerificationStatus = "pending"
	StatusMissing  VerificationStatus = "missing"
)

// EngineVerification records what one analysis engine reported for a pillar.
type EngineVerification struct {
	Engine   string             `json:"engine"`
	Status   VerificationStatus `json:"status"`
	Value    Value              `json:"value,omitempty"`
	Source   Source             `json:"source,omitempty"`
	Detail   string             `json:"detail,omitempty"`
}

// ProjectMode determines which pillars participate in scoring.
type ProjectMode string

const (
	ModeSolo ProjectMode = "solo"
	ModeTeam ProjectMode = "team"
)

// ModeFor derives the project mode from the team member count.
func ModeFor(teamMemberCount int) ProjectMode {
	if teamMemberCount > 0 {
		return ModeTeam
	}
	return ModeSolo
}
