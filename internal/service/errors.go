package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDate is returned when the request date is not an ISO date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrMissingWeatherField is returned when the weather snapshot lacks a required reading.
	ErrMissingWeatherField = errors.New("missing weather field")

	// ErrPredictionNotFound is returned when a prediction id does not exist for the caller.
	ErrPredictionNotFound = errors.New("prediction not found")
)

// Stage names a step of the prediction pipeline
type Stage string

const (
	StageValidation  Stage = "validation"
	StageWeather     Stage = "weather"
	StageFeatures    Stage = "features"
	StageInference   Stage = "inference"
	StagePersistence Stage = "persistence"
)

// StageError reports a failed required stage and its cause
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// InferenceError is returned when a predictor cannot score a feature vector
type InferenceError struct {
	Predictor string
	Err       error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed (%s): %v", e.Predictor, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
