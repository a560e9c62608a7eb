// internal/models/production.go
package models

// ProductionStage is one of the four phases every order item moves through.
type ProductionStage string

const (
	StagePrep        ProductionStage = "prep"
	StagePrint       ProductionStage = "print"
	StageApplication ProductionStage = "application"
	StagePackaging   ProductionStage = "packaging"
)

// ProductionStages lists the stages in their nominal order.
var ProductionStages = []ProductionStage{StagePrep, StagePrint, StageApplication, StagePackaging}

func (s ProductionStage) IsValid() bool {
	_, ok := stageColumns[s]
	return ok
}

// Column returns the order_items column holding this stage's status.
func (s ProductionStage) Column() string {
	return stageColumns[s]
}

var stageColumns = map[ProductionStage]string{
	StagePrep:        "stage_prep_status",
	StagePrint:       "stage_print_status",
	StageApplication: "stage_application_status",
	StagePackaging:   "stage_packaging_status",
}

type StageStatus string

const (
	StageStatusPending    StageStatus = "pending"
	StageStatusInProgress StageStatus = "in_progress"
	StageStatusDone       StageStatus = "done"
	StageStatusFailed     StageStatus = "failed"
)

func (s StageStatus) IsValid() bool {
	switch s {
	case StageStatusPending, StageStatusInProgress, StageStatusDone, StageStatusFailed:
		return true
	}
	return false
}
