package core

// Tuning holds the heuristic thresholds used by the engine.
type Tuning struct {
	ViabilityThreshold float64 `mapstructure:"viability_threshold" json:"viability_threshold"`
	StrongPower        int     `mapstructure:"strong_power" json:"strong_power"`
	SweeperSpeed       int     `mapstructure:"sweeper_speed" json:"sweeper_speed"`
	TankBulk           int     `mapstructure:"tank_bulk" json:"tank_bulk"`
	BiasMargin         *int    `mapstructure:"bias_margin" json:"bias_margin"`
	MaxCandidates      int     `mapstructure:"max_candidates" json:"max_candidates"`
	FetchBatchSize     int     `mapstructure:"fetch_batch_size" json:"fetch_batch_size"`
}

// DefaultTuning returns the stock thresholds.
func DefaultTuning() Tuning {
	return Tuning{
		ViabilityThreshold: 30,
		StrongPower:        70,
		SweeperSpeed:       100,
		TankBulk:           335,
		BiasMargin:         IntPtr(15),
		MaxCandidates:      80,
		FetchBatchSize:     10,
	}
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}

// Margin is the configured bias margin. Zero is a valid margin, only an
// unset one falls back to the default.
func (t Tuning) Margin() int {
	if t.BiasMargin == nil {
		return *DefaultTuning().BiasMargin
	}
	return *t.BiasMargin
}

// WithDefaults fills zero fields from DefaultTuning. BiasMargin is filled
// only when unset.
func (t Tuning) WithDefaults() Tuning {
	def := DefaultTuning()
	if t.ViabilityThreshold <= 0 {
		t.ViabilityThreshold = def.ViabilityThreshold
	}
	if t.StrongPower <= 0 {
		t.StrongPower = def.StrongPower
	}
	if t.SweeperSpeed <= 0 {
		t.SweeperSpeed = def.SweeperSpeed
	}
	if t.TankBulk <= 0 {
		t.TankBulk = def.TankBulk
	}
	if t.BiasMargin == nil || *t.BiasMargin < 0 {
		t.BiasMargin = def.BiasMargin
	}
	if t.MaxCandidates <= 0 {
		t.MaxCandidates = def.MaxCandidates
	}
	if t.FetchBatchSize <= 0 {
		t.FetchBatchSize = def.FetchBatchSize
	}
	return t
}
