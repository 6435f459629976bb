package services

import "errors"

// Shared service errors, mapped to HTTP statuses by the handlers package.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrTeamNotFound       = errors.New("team not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrStageNotFound      = errors.New("stage not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Validation and business-rule errors
	ErrInvalidScore           = errors.New("scores must be non-negative integers")
	ErrMatchTeamsUnresolved   = errors.New("match team slots are not fully resolved")
	ErrMatchStatusTransition  = errors.New("match status does not allow finalization")
	ErrWinnerNotInMatch       = errors.New("winner must be one of the match teams")
	ErrWinnerContradictsScore = errors.New("winner reference contradicts the recorded score")
	ErrStageKindMismatch      = errors.New("operation is not valid for this stage kind")
	ErrStageConfigInvalid     = errors.New("stage configuration is invalid")
	ErrStageAlreadySetUp      = errors.New("stage already has matches")
	ErrGroupRequired          = errors.New("group id is required for a groups stage")
	ErrGroupStageMismatch     = errors.New("group does not belong to the stage")
	ErrNotEnoughTeams         = errors.New("not enough teams assigned to the stage")
	ErrStandingsScopeEmpty    = errors.New("no teams assigned to the standings scope")
)
