package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/config"
)

func TestTransfer_SplitsGainAcrossRecipients(t *testing.T) {
	loss, gain := 4.0, 6.0
	cfg := testConfig(t, func(c *config.Config) {
		c.World.AllowMultipleAgentsPerTile = true
		c.Energy.TransferLoss = &loss
		c.Energy.TransferGain = &gain
	})
	_, a := testWorld(cfg)
	tr := cfg.Action(config.ActionTransfer)
	idle := cfg.Action(config.ActionIdle)

	place(a, 0, 2, 1, 3) // faces (2, 2)
	place(a, 1, 2, 2, 0)
	place(a, 2, 2, 2, 0)
	a.Parent[1] = 0

	facing := make([]components.Cell, a.N)
	for i := range facing {
		facing[i] = components.Facing(a.Pos[i], a.Orientation[i], 5, 5)
	}
	res := NewTransferSystem(cfg).Update(a, []int{tr, idle, idle, idle}, facing)

	if res.Count != 1 || !res.Donated[0] || !res.Transferring[0] {
		t.Fatalf("expected one transfer from slot 0, got %+v", res)
	}
	if math.Abs(res.Delta[0]+loss) > 1e-9 {
		t.Errorf("donor delta = %v, want %v", res.Delta[0], -loss)
	}
	for _, i := range []int{1, 2} {
		if math.Abs(res.Delta[i]-gain/2) > 1e-9 {
			t.Errorf("recipient %d delta = %v, want %v", i, res.Delta[i], gain/2)
		}
		if !res.Received[i] {
			t.Errorf("recipient %d not marked as received", i)
		}
	}
	if res.Received[0] || res.Received[3] {
		t.Error("only slots on the target cell receive")
	}
	if !res.ToOffspring[0] || res.NumToOffspring() != 1 {
		t.Error("lowest recipient is the donor's child")
	}
}

func TestTransfer_DonorNeverReceivesOwnShare(t *testing.T) {
	loss, gain := 4.0, 6.0
	tests := []struct {
		name      string
		others    int // agents sharing the donor's cell
		wantDonor float64
		wantOther float64
	}{
		{"alone", 0, 0, 0},
		{"one neighbour", 1, -loss, gain},
		{"two neighbours", 2, -loss, gain / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, func(c *config.Config) {
				c.World.Width = 1
				c.World.AllowMultipleAgentsPerTile = true
				c.Energy.TransferLoss = &loss
				c.Energy.TransferGain = &gain
			})
			_, a := testWorld(cfg)
			tr := cfg.Action(config.ActionTransfer)
			actions := fill(a.N, cfg.Action(config.ActionIdle))
			actions[0] = tr

			place(a, 0, 2, 0, 3) // facing right wraps onto its own cell
			for k := 1; k <= tt.others; k++ {
				place(a, k, 2, 0, 0)
			}
			facing := make([]components.Cell, a.N)
			for i := range facing {
				facing[i] = components.Facing(a.Pos[i], a.Orientation[i], cfg.World.Height, cfg.World.Width)
			}
			res := NewTransferSystem(cfg).Update(a, actions, facing)

			if res.Received[0] {
				t.Error("donor received its own transfer")
			}
			if res.Donated[0] != (tt.others > 0) {
				t.Errorf("Donated = %v with %d neighbours", res.Donated[0], tt.others)
			}
			if math.Abs(res.Delta[0]-tt.wantDonor) > 1e-9 {
				t.Errorf("donor delta = %v, want %v", res.Delta[0], tt.wantDonor)
			}
			for k := 1; k <= tt.others; k++ {
				if math.Abs(res.Delta[k]-tt.wantOther) > 1e-9 {
					t.Errorf("delta[%d] = %v, want %v", k, res.Delta[k], tt.wantOther)
				}
			}
		})
	}
}

func TestTransfer_NoRecipient(t *testing.T) {
	cfg := testConfig(t, nil)
	_, a := testWorld(cfg)
	tr := cfg.Action(config.ActionTransfer)

	place(a, 0, 0, 0, 0)
	facing := []components.Cell{{1, 0}, {0, 0}, {0, 0}, {0, 0}}
	res := NewTransferSystem(cfg).Update(a, fill(4, tr), facing)

	if res.Count != 0 || res.Delta[0] != 0 {
		t.Errorf("no recipient should cost nothing, got delta %v", res.Delta[0])
	}
	if !res.Transferring[0] {
		t.Error("slot 0 still counts as transferring")
	}
	if res.Transferring[1] {
		t.Error("ghosts never transfer")
	}
}

func TestTransfer_Disabled(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Agents.Actions = []string{"forward", "left", "right", "eat", "idle"}
	})
	_, a := testWorld(cfg)
	place(a, 0, 0, 0, 0)
	res := NewTransferSystem(cfg).Update(a, fill(4, 0), make([]components.Cell, 4))
	if res.Count != 0 || res.Transferring[0] {
		t.Error("transfer without the action should be a no-op")
	}
}
