package kvindex

const (
	// DefaultCapacity is the capacity of a HashMap created with a
	// non-positive capacity by the convenience constructors.
	DefaultCapacity = 512

	// DefaultFloorCapacity is the capacity below which a HashMap never
	// shrinks.
	DefaultFloorCapacity = 512

	// DefaultGrowthFactor is the ratio between table capacities before and
	// after a grow (and after and before a shrink).
	DefaultGrowthFactor = 2

	// DefaultLoadFactorHigh is the load factor which, once exceeded, makes
	// the next insertion grow the table. It must not exceed 0.5 to keep every
	// probe sequence within one table cycle.
	DefaultLoadFactorHigh = 0.5

	// DefaultLoadFactorLow is the load factor below which the next deletion
	// shrinks the table.
	DefaultLoadFactorLow = 0.0625

	// DefaultMaxCapacity is the largest number of slots a HashMap may
	// allocate.
	DefaultMaxCapacity = 1 << 30
)

// config holds the capacity management parameters of a HashMap.
type config struct {
	floor    int
	growth   int
	high     float64
	low      float64
	capacity int
}

func defaultConfig() config {
	return config{
		floor:    DefaultFloorCapacity,
		growth:   DefaultGrowthFactor,
		high:     DefaultLoadFactorHigh,
		low:      DefaultLoadFactorLow,
		capacity: DefaultMaxCapacity,
	}
}

// Option configures a HashMap. Out of range values are ignored and the
// corresponding default stays in effect.
type Option func(*config)

// WithFloorCapacity sets the capacity below which the table never shrinks.
func WithFloorCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.floor = n
		}
	}
}

// WithGrowthFactor sets the capacity multiplier used on grow and shrink.
func WithGrowthFactor(n int) Option {
	return func(c *config) {
		if n >= 2 {
			c.growth = n
		}
	}
}

// WithLoadFactors sets the shrink (low) and grow (high) load factor
// thresholds. Pairs violating 0 <= low < high <= 0.5 are ignored.
func WithLoadFactors(low, high float64) Option {
	return func(c *config) {
		if low >= 0 && low < high && high <= DefaultLoadFactorHigh {
			c.low = low
			c.high = high
		}
	}
}

// WithMaxCapacity limits the number of slots the table may allocate.
// Resizes above the limit fail with ErrAllocation.
func WithMaxCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// growAbove returns the live entry count above which a table of given
// capacity grows.
func (c config) growAbove(capacity int) int {
	return int(float64(capacity) * c.high)
}

// shrinkBelow returns the live entry count below which a table of given
// capacity shrinks.
func (c config) shrinkBelow(capacity int) int {
	return int(float64(capacity) * c.low)
}
