package models

import "fmt"

// Stage is a named learning range with its own completion tracking.
type Stage int

const (
	StageOnes  Stage = 1 // 0-9
	StageTeens Stage = 2 // 10-20
	StageTens  Stage = 3 // 20, 30, ... 100
)

// Stages lists every stage in display order.
var Stages = []Stage{StageOnes, StageTeens, StageTens}

// ParseStage validates a stage number.
func ParseStage(n int) (Stage, error) {
	s := Stage(n)
	if !s.Valid() {
		return 0, fmt.Errorf("unknown stage %d", n)
	}
	return s, nil
}

func (s Stage) Valid() bool {
	return s >= StageOnes && s <= StageTens
}

// Numbers returns the numbers shown on the stage's grid, in order.
func (s Stage) Numbers() []int {
	var out []int
	switch s {
	case StageOnes:
		for n := 0; n <= 9; n++ {
			out = append(out, n)
		}
	case StageTeens:
		for n := 10; n <= 20; n++ {
			out = append(out, n)
		}
	case StageTens:
		for n := 20; n <= 100; n += 10 {
			out = append(out, n)
		}
	}
	return out
}

// Contains reports whether n appears on the stage's grid.
func (s Stage) Contains(n int) bool {
	for _, v := range s.Numbers() {
		if v == n {
			return true
		}
	}
	return false
}

// CountsByTens reports whether counting walks in steps of ten.
func (s Stage) CountsByTens() bool {
	return s == StageTens
}

// Title is the label shown on the stages screen.
func (s Stage) Title() string {
	switch s {
	case StageOnes:
		return "0 - 9"
	case StageTeens:
		return "10 - 20"
	case StageTens:
		return "20 - 100"
	default:
		return "?"
	}
}

// StageSummary is one row of the stages overview.
type StageSummary struct {
	Stage    Stage  `json:"stage"`
	Title    string `json:"title"`
	Numbers  []int  `json:"numbers"`
	Visited  int    `json:"visited"`
	Complete bool   `json:"complete"`
}
