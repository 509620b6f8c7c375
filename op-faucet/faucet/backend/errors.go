package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress is matched by every *ValidationError.
	ErrInvalidAddress    = errors.New("invalid address")
	ErrAlreadyClaimed    = errors.New("already claimed")
	ErrClaimInProgress   = errors.New("claim in progress")
	ErrFaucetDisabled    = errors.New("faucet is disabled")
	ErrInsufficientFunds = errors.New("insufficient faucet balance")
)

// ValidationError rejects a destination before any storage or network access.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid address %q: %s", e.Input, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidAddress
}

// Stage is a step of the dispatch of one request.
type Stage string

const (
	StageValidating     Stage = "validating"
	StageCheckingClaim  Stage = "checking_claim"
	StageAwaitingGate   Stage = "awaiting_gate"
	StageFetchingParams Stage = "fetching_params"
	StageSigning        Stage = "signing"
	StageBroadcasting   Stage = "broadcasting"
	StageRecordingClaim Stage = "recording_claim"
)

// StageError is a request aborted at the given stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func abort(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage a request was aborted at, if err carries one.
func StageOf(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return "", false
}

// Outcome labels the result of a request, for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrFaucetDisabled):
		return "disabled"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, ErrClaimInProgress):
		return "in_progress"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	default:
		return "failed"
	}
}
