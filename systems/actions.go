package systems

import "github.com/pthm-cable/gridworld/config"

// ActionIDs holds the id of each action in the configured action set.
// Actions that are not configured are -1 and never match.
type ActionIDs struct {
	Forward   int
	Left      int
	Right     int
	Eat       int
	Idle      int
	Transfer  int
	Reproduce int
}

// NewActionIDs resolves action ids from the config.
func NewActionIDs(cfg *config.Config) ActionIDs {
	return ActionIDs{
		Forward:   cfg.Action(config.ActionForward),
		Left:      cfg.Action(config.ActionLeft),
		Right:     cfg.Action(config.ActionRight),
		Eat:       cfg.Action(config.ActionEat),
		Idle:      cfg.Action(config.ActionIdle),
		Transfer:  cfg.Action(config.ActionTransfer),
		Reproduce: cfg.Action(config.ActionReproduce),
	}
}

// is reports whether action a is the configured id.
func is(a, id int) bool {
	return id >= 0 && a == id
}
