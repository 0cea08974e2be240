package systems

import (
	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

// TransferSystem moves energy from donors to the agents they face.
type TransferSystem struct {
	w       int
	cells   int
	loss    float64
	gain    float64
	actions ActionIDs
}

// NewTransferSystem creates a transfer system.
func NewTransferSystem(cfg *config.Config) *TransferSystem {
	return &TransferSystem{
		w:       cfg.World.Width,
		cells:   cfg.World.Width * cfg.World.Height,
		loss:    cfg.Derived.TransferLoss,
		gain:    cfg.Derived.TransferGain,
		actions: NewActionIDs(cfg),
	}
}

// TransferResult holds the per-slot outcome of transfers.
type TransferResult struct {
	Delta        []float64 // Net energy change per slot
	Transferring []bool    // Chose transfer, exempt from the action cost
	Donated      []bool    // Found at least one recipient
	ToOffspring  []bool    // Donated and the chosen recipient is its child
	Received     []bool    // Got a share from at least one donor
	Count        int
}

// Update resolves transfers. a is the pre-tick arena: recipients are found
// at their pre-tick positions. facing holds the pre-move facing cells.
func (s *TransferSystem) Update(a *components.Agents, actions []int, facing []components.Cell) TransferResult {
	n := a.N
	res := TransferResult{
		Delta:        make([]float64, n),
		Transferring: make([]bool, n),
		Donated:      make([]bool, n),
		ToOffspring:  make([]bool, n),
		Received:     make([]bool, n),
	}
	if s.actions.Transfer < 0 {
		return res
	}

	var idx *CellIndex
	var recipients []int
	for i := 0; i < n; i++ {
		if !a.Exists[i] || actions[i] != s.actions.Transfer {
			continue
		}
		res.Transferring[i] = true
		if idx == nil {
			idx = NewCellIndex(a, s.cells, s.w)
		}

		// On a grid one cell wide or tall the facing cell is the donor's
		// own, and a donor never receives its own share.
		recipients = recipients[:0]
		idx.Each(facing[i].Index(s.w), func(j int) {
			if j != i {
				recipients = append(recipients, j)
			}
		})
		if len(recipients) == 0 {
			continue
		}
		res.Donated[i] = true
		res.Count++
		res.Delta[i] -= s.loss
		share := s.gain / float64(len(recipients))
		for _, j := range recipients {
			res.Delta[j] += share
			res.Received[j] = true
		}
		res.ToOffspring[i] = a.Parent[recipients[0]] == i
	}

	return res
}

// NumToOffspring counts transfers aimed at a child.
func (r TransferResult) NumToOffspring() int {
	n := 0
	for _, ok := range r.ToOffspring {
		if ok {
			n++
		}
	}
	return n
}
