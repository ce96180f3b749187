package rules

import (
	"errors"
	"fmt"
)

var ErrRejected = errors.New("rejected")

type Code string

const (
	CodeInvalidSlot           Code = "INVALID_SLOT"
	CodeWrongItemType         Code = "WRONG_ITEM_TYPE"
	CodeUnknownItem           Code = "UNKNOWN_ITEM"
	CodeUnknownGuardian       Code = "UNKNOWN_GUARDIAN"
	CodeRequirementsNotMet    Code = "REQUIREMENTS_NOT_MET"
	CodeMissionUnavailable    Code = "MISSION_UNAVAILABLE"
	CodeEmptySquad            Code = "EMPTY_SQUAD"
	CodeSquadTooLarge         Code = "SQUAD_TOO_LARGE"
	CodeUnknownLocation       Code = "UNKNOWN_LOCATION"
	CodeLocationLocked        Code = "LOCATION_LOCKED"
	CodeNoActivities          Code = "NO_ACTIVITIES"
	CodeInvalidChoice         Code = "INVALID_CHOICE"
	CodeDropFinished          Code = "DROP_FINISHED"
	CodeDropInProgress        Code = "DROP_IN_PROGRESS"
	CodeUnknownWorkstation    Code = "UNKNOWN_WORKSTATION"
	CodeUnknownRecipe         Code = "UNKNOWN_RECIPE"
	CodeInsufficientItems     Code = "INSUFFICIENT_RESOURCES"
	CodeLevelTooLow           Code = "LEVEL_TOO_LOW"
	CodeBlueprintMissing      Code = "BLUEPRINT_NOT_LEARNED"
	CodeMaxLevel              Code = "MAX_LEVEL"
	CodeBlueprintAlreadyKnown Code = "BLUEPRINT_ALREADY_LEARNED"
	CodeItemEquipped          Code = "ITEM_ALREADY_EQUIPPED"
)

// Rejection is an expected domain failure. State is never modified when an
// operation returns one.
type Rejection struct {
	Code    Code     `json:"code"`
	Reason  string   `json:"reason"`
	Missing []string `json:"missing,omitempty"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Reason)
}

func (r *Rejection) Unwrap() error {
	return ErrRejected
}

func Reject(code Code, format string, args ...any) *Rejection {
	return &Rejection{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// AsRejection extracts the rejection carried by err.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
