package telemetry

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks int

	// Current window tracking
	windowStartTick int

	// Event counters for current window
	births      int
	deaths      int
	transfers   int
	toOffspring int
	foodEaten   float64
	eatAttempts int
	deathAges   []float64
}

// NewCollector creates a collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// RecordBirths records n births.
func (c *Collector) RecordBirths(n int) {
	c.births += n
}

// RecordDeath records a death at the given age.
func (c *Collector) RecordDeath(age int) {
	c.deaths++
	c.deathAges = append(c.deathAges, float64(age))
}

// RecordTransfers records n transfers, toOffspring of which reached a child.
func (c *Collector) RecordTransfers(n, toOffspring int) {
	c.transfers += n
	c.toOffspring += toOffspring
}

// RecordFood records energy gained from plants and the number of eat attempts.
func (c *Collector) RecordFood(amount float64, attempts int) {
	c.foodEaten += amount
	c.eatAttempts += attempts
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Population is the state sampled at the end of a window.
type Population struct {
	Agents         int
	Plants         float64
	Energies       []float64
	Ages           []float64
	ActiveLineages int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int, pop Population) WindowStats {
	energy := ComputeStats(pop.Energies)
	age := ComputeStats(pop.Ages)
	lifespan := ComputeStats(c.deathAges)

	var foodPerAttempt float64
	if c.eatAttempts > 0 {
		foodPerAttempt = c.foodEaten / float64(c.eatAttempts)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Agents: pop.Agents,
		Plants: pop.Plants,

		Births:         c.births,
		Deaths:         c.deaths,
		Transfers:      c.transfers,
		ToOffspring:    c.toOffspring,
		FoodEaten:      c.foodEaten,
		FoodPerAttempt: foodPerAttempt,
		LifeExpectancy: lifespan.Mean,

		EnergyMean: energy.Mean,
		EnergyStd:  energy.Std,
		EnergyP10:  energy.P10,
		EnergyP50:  energy.P50,
		EnergyP90:  energy.P90,

		AgeMean: age.Mean,
		AgeP50:  age.P50,
		AgeP90:  age.P90,

		ActiveLineages: pop.ActiveLineages,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = 0
	c.deaths = 0
	c.transfers = 0
	c.toOffspring = 0
	c.foodEaten = 0
	c.eatAttempts = 0
	c.deathAges = c.deathAges[:0]

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int {
	return c.windowTicks
}
