package drops

import "shiplife/internal/domain/drop"

type StartRequest struct {
	LocationID string
	GuardianID string
}

type ChoiceRequest struct {
	SessionID string
	Choice    string
}

type ExtractRequest struct {
	SessionID string
}

type StepResponse struct {
	Session drop.Session `json:"session"`
	Step    drop.Step    `json:"step"`
}

type ExtractResponse struct {
	Results drop.Results `json:"results"`
}

type LocationsResponse struct {
	Locations []drop.LocationStatus `json:"locations"`
}
