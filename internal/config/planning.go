// Package config loads the planner's JSON configuration. Fields are
// pointer-typed so a partial file only overrides what it names; the Get*
// accessors supply defaults for everything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/M-Vagrant/apollo/internal/hdmap"
	"github.com/M-Vagrant/apollo/internal/planning"
)

// SmootherTuning overrides the reference line smoother parameters.
type SmootherTuning struct {
	AnchorSpacingM    *float64 `json:"anchor_spacing_m,omitempty"`
	OutputResolutionM *float64 `json:"output_resolution_m,omitempty"`
	MaxDeviationM     *float64 `json:"max_deviation_m,omitempty"`
}

// PlanningConfig is the root configuration for the planner. Omitted fields
// fall back to the defaults baked into the Get* accessors, so partial
// configs are safe.
type PlanningConfig struct {
	LookBackwardM    *float64        `json:"look_backward_m,omitempty"`
	LookForwardM     *float64        `json:"look_forward_m,omitempty"`
	EnablePrediction *bool           `json:"enable_prediction,omitempty"`
	RecordInputs     *bool           `json:"record_inputs,omitempty"`
	MaxHistoryFrames *int            `json:"max_history_frames,omitempty"`
	CyclePeriodMS    *int            `json:"cycle_period_ms,omitempty"`
	RouteSnapMaxM    *float64        `json:"route_snap_max_m,omitempty"`
	Smoother         *SmootherTuning `json:"smoother,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyPlanningConfig returns a PlanningConfig with all fields unset, which
// resolves to pure defaults.
func EmptyPlanningConfig() *PlanningConfig {
	return &PlanningConfig{}
}

// LoadPlanningConfig loads a PlanningConfig from a JSON file. The file must
// have a .json extension and stay under the max file size. Fields omitted
// from the file keep their defaults.
func LoadPlanningConfig(path string) (*PlanningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPlanningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that set values are usable. Unset fields are always
// valid; they resolve to defaults.
func (c *PlanningConfig) Validate() error {
	if c.LookBackwardM != nil && *c.LookBackwardM < 0 {
		return fmt.Errorf("look_backward_m must be non-negative, got %f", *c.LookBackwardM)
	}
	if c.LookForwardM != nil && *c.LookForwardM <= 0 {
		return fmt.Errorf("look_forward_m must be positive, got %f", *c.LookForwardM)
	}
	if c.MaxHistoryFrames != nil && *c.MaxHistoryFrames < 1 {
		return fmt.Errorf("max_history_frames must be at least 1, got %d", *c.MaxHistoryFrames)
	}
	if c.CyclePeriodMS != nil && *c.CyclePeriodMS < 1 {
		return fmt.Errorf("cycle_period_ms must be at least 1, got %d", *c.CyclePeriodMS)
	}
	if c.RouteSnapMaxM != nil && *c.RouteSnapMaxM <= 0 {
		return fmt.Errorf("route_snap_max_m must be positive, got %f", *c.RouteSnapMaxM)
	}
	if s := c.Smoother; s != nil {
		if s.AnchorSpacingM != nil && *s.AnchorSpacingM <= 0 {
			return fmt.Errorf("smoother.anchor_spacing_m must be positive, got %f", *s.AnchorSpacingM)
		}
		if s.OutputResolutionM != nil && *s.OutputResolutionM <= 0 {
			return fmt.Errorf("smoother.output_resolution_m must be positive, got %f", *s.OutputResolutionM)
		}
		if s.MaxDeviationM != nil && *s.MaxDeviationM <= 0 {
			return fmt.Errorf("smoother.max_deviation_m must be positive, got %f", *s.MaxDeviationM)
		}
	}
	return nil
}

// GetLookBackwardM returns the look_backward_m value or the default.
func (c *PlanningConfig) GetLookBackwardM() float64 {
	if c.LookBackwardM == nil {
		return planning.DefaultLookBackwardM
	}
	return *c.LookBackwardM
}

// GetLookForwardM returns the look_forward_m value or the default.
func (c *PlanningConfig) GetLookForwardM() float64 {
	if c.LookForwardM == nil {
		return planning.DefaultLookForwardM
	}
	return *c.LookForwardM
}

// GetEnablePrediction returns the enable_prediction value or the default.
func (c *PlanningConfig) GetEnablePrediction() bool {
	if c.EnablePrediction == nil {
		return true // default: obstacles come from prediction
	}
	return *c.EnablePrediction
}

// GetRecordInputs returns the record_inputs value or the default.
func (c *PlanningConfig) GetRecordInputs() bool {
	if c.RecordInputs == nil {
		return false // default: input snapshots disabled
	}
	return *c.RecordInputs
}

// GetMaxHistoryFrames returns the max_history_frames value or the default.
func (c *PlanningConfig) GetMaxHistoryFrames() int {
	if c.MaxHistoryFrames == nil {
		return planning.DefaultMaxHistoryFrames
	}
	return *c.MaxHistoryFrames
}

// GetCyclePeriod returns the cycle period as a time.Duration.
func (c *PlanningConfig) GetCyclePeriod() time.Duration {
	if c.CyclePeriodMS == nil {
		return 100 * time.Millisecond // default: 10Hz
	}
	return time.Duration(*c.CyclePeriodMS) * time.Millisecond
}

// GetRouteSnapMaxM returns the route_snap_max_m value or the default.
func (c *PlanningConfig) GetRouteSnapMaxM() float64 {
	if c.RouteSnapMaxM == nil {
		return hdmap.DefaultSnapMaxM
	}
	return *c.RouteSnapMaxM
}

// SmootherConfig materializes the smoother configuration, mixing set
// overrides with defaults.
func (c *PlanningConfig) SmootherConfig() planning.SmootherConfig {
	cfg := planning.SmootherConfig{
		AnchorSpacingM:    planning.DefaultAnchorSpacingM,
		OutputResolutionM: planning.DefaultOutputResolutionM,
		MaxDeviationM:     planning.DefaultMaxDeviationM,
	}
	if s := c.Smoother; s != nil {
		if s.AnchorSpacingM != nil {
			cfg.AnchorSpacingM = *s.AnchorSpacingM
		}
		if s.OutputResolutionM != nil {
			cfg.OutputResolutionM = *s.OutputResolutionM
		}
		if s.MaxDeviationM != nil {
			cfg.MaxDeviationM = *s.MaxDeviationM
		}
	}
	return cfg
}
