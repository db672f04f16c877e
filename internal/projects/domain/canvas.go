package domain

// CanvasArea identifies the section of the lean canvas an assumption belongs to.
// Values outside the known set are tolerated and classified with the default stage.
type CanvasArea string

const (
	AreaCustomerSegments       CanvasArea = "customerSegments"
	AreaProblem                CanvasArea = "problem"
	AreaExistingAlternatives   CanvasArea = "existingAlternatives"
	AreaSolution               CanvasArea = "solution"
	AreaUniqueValueProposition CanvasArea = "uniqueValueProposition"
	AreaEarlyAdopters          CanvasArea = "earlyAdopters"
	AreaChannels               CanvasArea = "channels"
	AreaRevenueStreams         CanvasArea = "revenueStreams"
	AreaCostStructure          CanvasArea = "costStructure"
	AreaKeyMetrics             CanvasArea = "keyMetrics"
	AreaUnfairAdvantage        CanvasArea = "unfairAdvantage"
)

// Stage is the validation stage (1-3). Zero means the stage was never set.
type Stage int

const (
	StageUnset Stage = 0
	Stage1     Stage = 1
	Stage2     Stage = 2
	Stage3     Stage = 3

	DefaultStage = Stage1
)

var stageByArea = map[CanvasArea]Stage{
	AreaCustomerSegments: Stage1,
	AreaProblem:          Stage1,

	AreaExistingAlternatives:   Stage2,
	AreaSolution:               Stage2,
	AreaUniqueValueProposition: Stage2,
	AreaEarlyAdopters:          Stage2,

	AreaChannels:        Stage3,
	AreaRevenueStreams:  Stage3,
	AreaCostStructure:   Stage3,
	AreaKeyMetrics:      Stage3,
	AreaUnfairAdvantage: Stage3,
}

// StageFor returns the canonical stage for a canvas area. Unknown areas map to DefaultStage.
func StageFor(area CanvasArea) Stage {
	if s, ok := stageByArea[area]; ok {
		return s
	}
	return DefaultStage
}

// Known reports whether the area is part of the closed canvas set.
func (a CanvasArea) Known() bool {
	_, ok := stageByArea[a]
	return ok
}

// Valid reports whether s is one of the three real stages.
func (s Stage) Valid() bool {
	return s >= Stage1 && s <= Stage3
}
