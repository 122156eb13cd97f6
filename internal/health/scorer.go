// Package health computes the weighted completeness score over the pillar
// taxonomy. Solo-mode projects exclude team pillars from both sides of the
// ratio, so the score is never inflated by pillars that structurally
// cannot apply.
package health

import (
	"math"
	"strings"

	"github.com/buildlane/sitetruth/internal/model"
)

// PillarSubjectPrefix marks citations whose subject is a pillar rather
// than a ledger item.
const PillarSubjectPrefix = "pillar:"

// PillarSubject returns the citation subject id for a pillar.
func PillarSubject(id model.PillarID) string {
	return PillarSubjectPrefix + string(id)
}

// weights is the fixed 16-pillar weight table. The confirmed-area lock and
// the materials (analysis/template) lock carry extra weight; site map and
// weather are half-weight nice-to-haves. Solo pillars sum to 9.0 and the
// full table to 15.5.
var weights = map[model.PillarID]float64{
	model.PillarConfirmedArea: 1.5,
	model.PillarMaterials:     1.5,
	model.PillarBlueprint:     1.0,
	model.PillarOBCCompliance: 1.0,
	model.PillarConflictCheck: 1.0,
	model.PillarProjectMode:   1.0,
	model.PillarProjectSize:   1.0,
	model.PillarConfidence:    1.0,
	model.PillarTrades:        1.0,
	model.PillarTeamMembers:   1.0,
	model.PillarTasks:         1.0,
	model.PillarContracts:     1.0,
	model.PillarClientInfo:    1.0,
	model.PillarSiteMap:       0.5,
	model.PillarDocuments:     1.0,
	model.PillarWeather:       0.5,
}

// requiredCite maps each pillar to the citation type that satisfies it.
var requiredCite = map[model.PillarID]model.CitationType{
	model.PillarConfirmedArea: model.CiteAreaLock,
	model.PillarMaterials:     model.CiteMaterials,
	model.PillarBlueprint:     model.CiteBlueprint,
	model.PillarOBCCompliance: model.CiteRegulatory,
	model.PillarConflictCheck: model.CiteConflictScan,
	model.PillarProjectMode:   model.CiteProjectMode,
	model.PillarProjectSize:   model.CiteProjectSize,
	model.PillarConfidence:    model.CiteConfidence,
	model.PillarTrades:        model.CiteTrades,
	model.PillarTeamMembers:   model.CiteTeamMembers,
	model.PillarTasks:         model.CiteTasks,
	model.PillarContracts:     model.CiteContracts,
	model.PillarClientInfo:    model.CiteClientInfo,
	model.PillarSiteMap:       model.CiteSiteMap,
	model.PillarDocuments:     model.CiteDocuments,
	model.PillarWeather:       model.CiteWeather,
}

// pillarCiteType maps pillar subject ids back to citation types.
var pillarCiteType = func() map[string]model.CitationType {
	out := make(map[string]model.CitationType, len(requiredCite))
	for id, ct := range requiredCite {
		out[PillarSubject(id)] = ct
	}
	return out
}()

// Weight returns the scoring weight for a pillar. Unknown pillars weigh 0.
func Weight(id model.PillarID) float64 {
	return weights[id]
}

// Classify derives the citation type a citation satisfies. Pillar-subject
// citations map to their pillar's type; every ledger-item citation counts
// toward the materials lock.
func Classify(c model.Citation) model.CitationType {
	if strings.HasPrefix(c.SubjectID, PillarSubjectPrefix) {
		if ct, ok := pillarCiteType[c.SubjectID]; ok {
			return ct
		}
		return ""
	}
	return model.CiteMaterials
}

// Score evaluates the citation set against the pillar taxonomy for the
// given team size. teamMemberCount == 0 selects solo mode.
func Score(citations []model.Citation, teamMemberCount int) model.HealthScore {
	mode := model.ModeFor(teamMemberCount)
	pillars := model.SoloPillars
	if mode == model.ModeTeam {
		pillars = model.AllPillars()
	}

	satisfied := make(map[model.CitationType]bool, len(citations))
	for _, c := range citations {
		if ct := Classify(c); ct != "" {
			satisfied[ct] = true
		}
	}

	var totalWeight, completedWeight float64
	results := make([]model.PillarResult, 0, len(pillars))
	for _, id := range pillars {
		w := weights[id]
		totalWeight += w

		complete := satisfied[requiredCite[id]]
		if complete {
			completedWeight += w
		}
		results = append(results, model.PillarResult{PillarID: id, Weight: w, Complete: complete})
	}

	score := 0
	if totalWeight > 0 {
		score = int(math.Round(100 * completedWeight / totalWeight))
	}

	return model.HealthScore{Score: score, Mode: mode, Pillars: results}
}
