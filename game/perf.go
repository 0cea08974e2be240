package game

// Profiler times the phases of a step. telemetry.PerfCollector implements it.
type Profiler interface {
	StartPhase(phase string)
}

type nopProfiler struct{}

func (nopProfiler) StartPhase(string) {}
