package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if got := len(cfg.Derived.ChannelNames); got != 4+cfg.Channels.DimAppearance {
		t.Errorf("channel count = %d, want %d", got, 4+cfg.Channels.DimAppearance)
	}
	if cfg.Derived.ChannelIndex[ChannelAgents] != 2 {
		t.Errorf("agents channel index = %d, want 2", cfg.Derived.ChannelIndex[ChannelAgents])
	}
	if cfg.Derived.NumActions != len(cfg.Agents.Actions) {
		t.Errorf("NumActions = %d, want %d", cfg.Derived.NumActions, len(cfg.Agents.Actions))
	}
	// Transfer amounts fall back to the food value
	if cfg.Derived.TransferLoss != cfg.Energy.Food || cfg.Derived.TransferGain != cfg.Energy.Food {
		t.Errorf("transfer defaults = %v/%v, want %v", cfg.Derived.TransferLoss, cfg.Derived.TransferGain, cfg.Energy.Food)
	}
	if !cfg.Derived.Environmental["n_agents"] {
		t.Error("n_agents should be environmental")
	}
	if cfg.Action("no_such_action") != -1 {
		t.Error("unknown action should map to -1")
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	data := []byte("world:\n  width: 12\n  height: 8\npopulation:\n  n_agents_max: 10\n  n_agents_initial: 4\nenergy:\n  transfer_gain: 3\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.Width != 12 || cfg.World.Height != 8 {
		t.Errorf("size = %dx%d, want 8x12", cfg.World.Height, cfg.World.Width)
	}
	if cfg.Derived.TransferGain != 3 {
		t.Errorf("TransferGain = %v, want 3", cfg.Derived.TransferGain)
	}
	// Untouched sections keep their defaults
	if cfg.Sun.Method != "sine" {
		t.Errorf("sun method = %q, want default sine", cfg.Sun.Method)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero max agents", func(c *Config) { c.Population.MaxAgents = 0 }},
		{"initial above max", func(c *Config) { c.Population.InitialAgents = c.Population.MaxAgents + 1 }},
		{"max above cells", func(c *Config) { c.World.Width, c.World.Height = 2, 2 }},
		{"empty actions", func(c *Config) { c.Agents.Actions = nil }},
		{"unknown action", func(c *Config) { c.Agents.Actions = []string{"fly"} }},
		{"empty observations", func(c *Config) { c.Agents.Observations = nil }},
		{"unknown visual channel", func(c *Config) { c.Channels.VisualField = []string{"water"} }},
		{"appearance channel out of range", func(c *Config) { c.Channels.VisualField = []string{"appearance_9"} }},
		{"unknown color tag", func(c *Config) { c.Video.ChannelColors = map[string]string{"plants": "chartreuse"} }},
		{"unknown color channel", func(c *Config) { c.Video.ChannelColors = map[string]string{"rocks": "red"} }},
		{"unknown background", func(c *Config) { c.Video.ColorBackground = "plaid" }},
		{"unknown sun method", func(c *Config) { c.Sun.Method = "eclipse" }},
		{"zero sun period", func(c *Config) { c.Sun.Method, c.Sun.Period = "linear", 0 }},
		{"unknown measure", func(c *Config) { c.Metrics.Measures.State = []string{"mood"} }},
		{"unknown action measure", func(c *Config) { c.Metrics.Measures.Immediate = []string{"do_action_fly"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Defaults()
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			err = cfg.Finalize()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Finalize() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	clone, err := cfg.Clone()
	if err != nil {
		t.Fatal(err)
	}
	clone.Energy.Food = 999
	clone.Agents.Actions[0] = "idle"
	if cfg.Energy.Food == 999 || cfg.Agents.Actions[0] == "idle" {
		t.Error("Clone shares state with the original")
	}
	if clone.Derived.ChannelIndex[ChannelPlants] != 1 {
		t.Error("Clone should recompute derived values")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if back.Population.MaxAgents != cfg.Population.MaxAgents {
		t.Errorf("MaxAgents = %d, want %d", back.Population.MaxAgents, cfg.Population.MaxAgents)
	}
}
