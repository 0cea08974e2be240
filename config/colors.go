package config

// ColorTags maps color tag names to RGB in [0, 1].
var ColorTags = map[string][3]float64{
	"white":   {1, 1, 1},
	"black":   {0, 0, 0},
	"gray":    {0.5, 0.5, 0.5},
	"red":     {1, 0, 0},
	"green":   {0, 1, 0},
	"blue":    {0, 0, 1},
	"yellow":  {1, 1, 0},
	"orange":  {1, 0.5, 0},
	"purple":  {0.5, 0, 0.5},
	"cyan":    {0, 1, 1},
	"magenta": {1, 0, 1},
	"brown":   {0.6, 0.3, 0.1},
	"pink":    {1, 0.75, 0.8},
}
