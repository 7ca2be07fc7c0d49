// conf/validate.go

package conf

import (
	"fmt"
	"net"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateGateSettings("ActivityFilter", &settings.ActivityFilter.Gate); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateActivityFilterSettings(&settings.ActivityFilter); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateGateSettings("EventDetector", &settings.EventDetector.Gate); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateEventDetectorSettings(&settings.EventDetector); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateLabelerSettings(&settings.Labeler); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validatePipelineSettings(&settings.Pipeline); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateOutputSettings(&settings.Output); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateGateSettings validates one quality-gate threshold set.
func validateGateSettings(stage string, gate *GateSettings) error {
	var errs []string

	if gate.ConfThreshold < 0 || gate.ConfThreshold > 1 {
		errs = append(errs, fmt.Sprintf("%s confidence threshold must be between 0 and 1", stage))
	}

	if gate.MinBBoxArea < 0 {
		errs = append(errs, fmt.Sprintf("%s min bbox area must be non-negative", stage))
	}

	if gate.MinBBoxArea > gate.MaxBBoxArea {
		errs = append(errs, fmt.Sprintf("%s min bbox area must not exceed max bbox area", stage))
	}

	if gate.MinAspectRatio < 0 {
		errs = append(errs, fmt.Sprintf("%s min aspect ratio must be non-negative", stage))
	}

	if gate.MinAspectRatio > gate.MaxAspectRatio {
		errs = append(errs, fmt.Sprintf("%s min aspect ratio must not exceed max aspect ratio", stage))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s gate settings errors: %v", stage, errs)
	}
	return nil
}

// validateActivityFilterSettings validates the activity-filter specific settings
func validateActivityFilterSettings(settings *ActivityFilterSettings) error {
	var errs []string

	if settings.MinPersonFrames < 0 {
		errs = append(errs, "ActivityFilter min person frames must be non-negative")
	}

	if settings.SampleRate < 1 {
		errs = append(errs, "ActivityFilter sample rate must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("ActivityFilter settings errors: %v", errs)
	}
	return nil
}

// validateEventDetectorSettings validates the event-detector specific settings
func validateEventDetectorSettings(settings *EventDetectorSettings) error {
	var errs []string

	if settings.MinTrackLength < 1 {
		errs = append(errs, "EventDetector min track length must be at least 1")
	}

	if settings.MinEventDurationSeconds < 0 {
		errs = append(errs, "EventDetector min event duration must be non-negative")
	}

	if settings.MaxGapFrames < 0 {
		errs = append(errs, "EventDetector max gap frames must be non-negative")
	}

	if settings.MinTrackConfidenceAvg < 0 || settings.MinTrackConfidenceAvg > 1 {
		errs = append(errs, "EventDetector min track confidence avg must be between 0 and 1")
	}

	if settings.MinTrackMovementPixels < 0 {
		errs = append(errs, "EventDetector min track movement must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("EventDetector settings errors: %v", errs)
	}
	return nil
}

// validateLabelerSettings validates the labeler specific settings
func validateLabelerSettings(settings *LabelerSettings) error {
	var errs []string

	if settings.NormalMaxDuration < 0 {
		errs = append(errs, "Labeler normal max duration must be non-negative")
	}

	if settings.SuspiciousMinDuration < settings.NormalMaxDuration {
		errs = append(errs, "Labeler suspicious min duration must not be below normal max duration")
	}

	if settings.SuspiciousMinFrames < 0 {
		errs = append(errs, "Labeler suspicious min frames must be non-negative")
	}

	if settings.HighConfidenceThreshold < 0 || settings.HighConfidenceThreshold > 1 {
		errs = append(errs, "Labeler high confidence threshold must be between 0 and 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("Labeler settings errors: %v", errs)
	}
	return nil
}

// validatePipelineSettings validates the pipeline coordination settings
func validatePipelineSettings(settings *PipelineSettings) error {
	if settings.Workers < 0 {
		return fmt.Errorf("Pipeline settings errors: [workers must be non-negative]")
	}
	return nil
}

// validateOutputSettings validates the output settings
func validateOutputSettings(settings *OutputSettings) error {
	var errs []string

	if settings.Path == "" {
		errs = append(errs, "Output path must not be empty")
	}

	if settings.SQLite.Enabled && settings.SQLite.Path == "" {
		errs = append(errs, "SQLite database path must not be empty when SQLite is enabled")
	}

	if settings.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(settings.Metrics.Listen); err != nil {
			errs = append(errs, fmt.Sprintf("Metrics listen address is invalid: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("Output settings errors: %v", errs)
	}
	return nil
}
