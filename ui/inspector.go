package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridworld/components"
	"github.com/pthm-cable/gridworld/telemetry"
)

// SlotView is the inspected state of one agent slot.
type SlotView struct {
	Slot        int
	Exists      bool
	Pos         components.Cell
	Orientation int
	Energy      float64
	EnergyMax   float64
	Age         int
	AgeMax      int
	Parent      int // -1 for founders and ghosts
	Lineage     int
	Appearance  []float64
	Life        *telemetry.LifeStats // nil when untracked
	Hidden      int                  // Hidden units of the slot's brain, 0 without one
}

// NewSlotView collects the state of slot i.
func NewSlotView(st *components.State, i int, energyMax float64, ageMax, lineage int, life *telemetry.LifeStats) SlotView {
	a := st.Agents
	v := SlotView{
		Slot:        i,
		Exists:      a.Exists[i],
		Pos:         a.Pos[i],
		Orientation: a.Orientation[i],
		Energy:      a.Energy[i],
		EnergyMax:   energyMax,
		Age:         a.Age[i],
		AgeMax:      ageMax,
		Parent:      -1,
		Lineage:     lineage,
		Appearance:  append([]float64(nil), a.AppearanceOf(i)...),
		Life:        life,
	}
	if a.Parent[i] != a.NoParent() {
		v.Parent = a.Parent[i]
	}
	return v
}

var orientationNames = [components.NumOrientations]string{"down", "left", "up", "right"}

// slotPanel describes the inspector layout.
func slotPanel(width int32, energyMax float64, ageMax int) PanelDescriptor {
	view := func(data any) SlotView { return data.(SlotView) }
	alive := func(data any) bool { return view(data).Exists }
	tracked := func(data any) bool { return view(data).Life != nil }

	return PanelDescriptor{
		ID:    "slot",
		Title: "Slot Inspector",
		Width: width,
		Sections: []SectionDescriptor{
			{
				ID: "identity",
				Fields: []FieldDescriptor{
					{ID: "slot", Label: "Slot", Widget: WidgetText, TextGetter: func(d any) string {
						v := view(d)
						if !v.Exists {
							return fmt.Sprintf("%d (ghost)", v.Slot)
						}
						return fmt.Sprintf("%d", v.Slot)
					}},
					{ID: "cell", Label: "Cell", Widget: WidgetText, Visible: alive, TextGetter: func(d any) string {
						v := view(d)
						return fmt.Sprintf("(%d, %d) %s", v.Pos.Row, v.Pos.Col, orientationNames[v.Orientation])
					}},
					{ID: "parent", Label: "Parent", Widget: WidgetText, Visible: alive, TextGetter: func(d any) string {
						if p := view(d).Parent; p >= 0 {
							return fmt.Sprintf("%d", p)
						}
						return "founder"
					}},
					{ID: "lineage", Label: "Lineage", Widget: WidgetText, Visible: alive, Format: "%.0f",
						Getter: func(d any) float64 { return float64(view(d).Lineage) }},
				},
			},
			{
				ID:      "state",
				Title:   "State",
				Visible: alive,
				Fields: []FieldDescriptor{
					{ID: "energy", Label: "Energy", Widget: WidgetEnergyBar, Range: FieldRange{Max: energyMax},
						Getter: func(d any) float64 { return view(d).Energy }},
					{ID: "age", Label: "Age", Widget: WidgetBar, Range: FieldRange{Max: float64(ageMax)},
						Getter: func(d any) float64 { return float64(view(d).Age) }},
					{ID: "appearance", Label: "Appearance", Widget: WidgetColorSwatch,
						ColorGetter: func(d any) rl.Color { return AppearanceColor(view(d).Appearance) }},
					{ID: "brain", Label: "Brain", Widget: WidgetText, TextGetter: func(d any) string {
						if h := view(d).Hidden; h > 0 {
							return fmt.Sprintf("%d hidden", h)
						}
						return "none"
					}},
				},
			},
			{
				ID:      "life",
				Title:   "Lifetime",
				Visible: func(d any) bool { return alive(d) && tracked(d) },
				Fields: []FieldDescriptor{
					{ID: "children", Label: "Children", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float64 { return float64(view(d).Life.Children) }},
					{ID: "transfers", Label: "Transfers", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float64 { return float64(view(d).Life.Transfers) }},
					{ID: "food", Label: "Food eaten", Widget: WidgetText, Format: "%.1f",
						Getter: func(d any) float64 { return view(d).Life.FoodEaten }},
					{ID: "peak", Label: "Peak energy", Widget: WidgetText, Format: "%.1f",
						Getter: func(d any) float64 { return view(d).Life.PeakEnergy }},
				},
			},
		},
	}
}

// AppearanceColor maps up to three appearance components onto RGB.
func AppearanceColor(app []float64) rl.Color {
	var rgb [3]uint8
	for k := 0; k < len(app) && k < 3; k++ {
		rgb[k] = uint8(min(max(app[k], 0), 1) * 255)
	}
	return rl.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
}

// Inspector renders the slot inspection panel.
type Inspector struct {
	renderer *Renderer
	panel    PanelDescriptor
	x, y     int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32, energyMax float64, ageMax int) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		panel:    slotPanel(width, energyMax, ageMax),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel and returns the Y below it.
func (ins *Inspector) Draw(v SlotView) int32 {
	return ins.renderer.DrawPanelDescriptor(ins.x, ins.y, ins.panel, v)
}
