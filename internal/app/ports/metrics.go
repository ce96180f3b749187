package ports

import "shiplife/internal/domain/rules"

type OutcomeMetrics interface {
	RecordMission(missionType string, success bool)
	RecordDrop(reason string)
	RecordRejection(code rules.Code)
}
