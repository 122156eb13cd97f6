package model

// Source identifies the origin of a project fact.
type Source string

const (
	SourceAIPhoto        Source = "ai_photo"
	SourceAIBlueprint    Source = "ai_blueprint"
	SourceAIRegulatory   Source = "ai_regulatory"
	SourceTemplatePreset Source = "template_preset"
	SourceCalculator     Source = "calculator"
	SourceManualOverride Source = "manual_override"
	SourceImported       Source = "imported"
)

// sourceRank orders sources by authority. A manual edit outranks every
// automated source; template presets and bulk imports rank lowest.
var sourceRank = map[Source]int{
	SourceManualOverride: 6,
	SourceCalculator:     5,
	SourceAIPhoto:        4,
	SourceAIBlueprint:    4,
	SourceAIRegulatory:   4,
	SourceTemplatePreset: 2,
	SourceImported:       1,
}

// Rank returns the authority rank of the source. Unknown sources rank 0.
func (s Source) Rank() int {
	return sourceRank[s]
}

// Outranks reports whether s has strictly higher authority than other.
func (s Source) Outranks(other Source) bool {
	return s.Rank() > other.Rank()
}

// Valid reports whether s is one of the known source values.
func (s Source) Valid() bool {
	_, ok := sourceRank[s]
	return ok
}
