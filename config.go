// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

// All timing in the engine is expressed in abstract epochs supplied by the
// environment. These variables translate epoch counts into informational
// wall-clock estimates and are never used for payout math.
var (
	// EpochsPerDay is the assumed number of epochs per day, used by the
	// yield-rate estimators.
	EpochsPerDay = NewConfigVar("epochs-per-day", 8640)

	// AverageEpochDuration is the assumed duration of one epoch in seconds,
	// used to express remaining event duration.
	AverageEpochDuration = NewConfigVar("average-epoch-duration", 10)
)

// ConfigVar is a named tunable with a default value. The default can be
// overridden once at process start, subsequent overrides are ignored.
type ConfigVar struct {
	name        string
	value       uint32
	initialised bool
}

func NewConfigVar(name string, defaultValue uint32) *ConfigVar {
	return &ConfigVar{
		name:  name,
		value: defaultValue,
	}
}

func (c *ConfigVar) Get() uint32 {
	return c.value
}

func (c *ConfigVar) Name() string {
	return c.name
}

// Override sets a non-default value. The first call wins.
func (c *ConfigVar) Override(value uint32) bool {
	if c.initialised || value == 0 {
		return false
	}
	c.initialised = true
	c.value = value
	return true
}
