// Package chart synthesizes the "startup reality check" pie-chart data.
//
// The numbers are demo placeholders seeded from the uploaded file name,
// not an analysis signal derived from deck content.
package chart

import "math"

// Slice is one category in the reality-check pie chart.
type Slice struct {
	Name        string `json:"name"`
	Value       int    `json:"value"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// Default returns the fallback slice set used when no seed is available.
func Default() []Slice {
	return []Slice{
		{
			Name:        "Unicorn Potential",
			Value:       35,
			Color:       "#FF6B6B",
			Description: "Probability of becoming the next unicorn (or at least that's what your mom thinks).",
		},
		{
			Name:        "LinkedIn Fame vs Reality Gap",
			Value:       20,
			Color:       "#4ECDC4",
			Description: "The difference between your LinkedIn presence and actual business results.",
		},
		{
			Name:        "Work-Life Balance Survival",
			Value:       15,
			Color:       "#FFD166",
			Description: "Chance of maintaining any semblance of a personal life while chasing your startup dreams.",
		},
		{
			Name:        "Corporate Return Risk",
			Value:       20,
			Color:       "#6A0572",
			Description: "Probability of ending up back in corporate life within 24 months.",
		},
		{
			Name:        "Investor FOMO Factor",
			Value:       10,
			Color:       "#118AB2",
			Description: "How likely investors are to fund you based purely on fear of missing out.",
		},
	}
}

// Generate derives the five slices from a file name and normalizes them
// so the values sum to exactly 100. Deterministic: the same name always
// produces the same chart.
func Generate(fileName string) []Slice {
	sum := 0
	for _, r := range fileName {
		sum += int(r)
	}
	seed := sum % 100

	data := Default()
	data[0].Value = clamp(30+seed%30, 15, 55)
	data[1].Value = clamp(20+(seed*7)%20, 10, 35)
	data[2].Value = clamp(15+(seed*3)%15, 5, 25)
	data[3].Value = clamp(20+(seed*11)%20, 10, 30)
	data[4].Value = clamp(15+(seed*5)%15, 5, 25)

	return Normalize(data)
}

// Normalize rescales slice values to percentages summing to exactly 100.
// The rounding remainder goes to the currently-largest slice.
func Normalize(data []Slice) []Slice {
	total := 0
	for _, s := range data {
		total += s.Value
	}
	if total == 0 {
		return Default()
	}

	out := make([]Slice, len(data))
	copy(out, data)

	normalized := 0
	for i := range out {
		out[i].Value = int(math.Round(float64(out[i].Value) / float64(total) * 100))
		normalized += out[i].Value
	}

	if normalized != 100 {
		largest := 0
		for i := range out {
			if out[i].Value > out[largest].Value {
				largest = i
			}
		}
		out[largest].Value += 100 - normalized
	}

	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
