package models

import "sort"

// Mode is the screen the learner is on.
type Mode string

const (
	ModeMenu             Mode = "menu"
	ModeStages           Mode = "stages"
	ModeGrid             Mode = "grid"
	ModeDetail           Mode = "detail"
	ModeDifficultySelect Mode = "difficulty_select"
	ModePlaying          Mode = "playing"
	ModeGameOver         Mode = "game_over"
	ModeMath             Mode = "math"
)

// Question is one round: a target and four distinct options containing it.
type Question struct {
	Target  int   `json:"target"`
	Options []int `json:"options"`
}

// HasOption reports whether v is one of the question's options.
func (q Question) HasOption(v int) bool {
	for _, o := range q.Options {
		if o == v {
			return true
		}
	}
	return false
}

// Status is the feedback shown on an option button.
type Status string

const (
	StatusCorrect Status = "correct"
	StatusWrong   Status = "wrong"
)

// AnswerStatus maps option values to feedback. Missing keys are neutral.
type AnswerStatus map[int]Status

// Clone returns an independent copy.
func (a AnswerStatus) Clone() AnswerStatus {
	out := make(AnswerStatus, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// VisitedNumbers is the set of numbers opened in detail view.
type VisitedNumbers map[int]struct{}

// NewVisitedNumbers builds a set from a list, ignoring duplicates.
func NewVisitedNumbers(list []int) VisitedNumbers {
	v := make(VisitedNumbers, len(list))
	for _, n := range list {
		v[n] = struct{}{}
	}
	return v
}

func (v VisitedNumbers) Has(n int) bool {
	_, ok := v[n]
	return ok
}

// Add inserts n and reports whether it was new.
func (v VisitedNumbers) Add(n int) bool {
	if v.Has(n) {
		return false
	}
	v[n] = struct{}{}
	return true
}

// List returns the members in ascending order.
func (v VisitedNumbers) List() []int {
	out := make([]int, 0, len(v))
	for n := range v {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// StageComplete reports whether every number of the stage was visited.
func (v VisitedNumbers) StageComplete(s Stage) bool {
	nums := s.Numbers()
	if len(nums) == 0 {
		return false
	}
	for _, n := range nums {
		if !v.Has(n) {
			return false
		}
	}
	return true
}

// VisitedIn counts visited numbers belonging to the stage.
func (v VisitedNumbers) VisitedIn(s Stage) int {
	count := 0
	for _, n := range s.Numbers() {
		if v.Has(n) {
			count++
		}
	}
	return count
}

// SessionState is the quiz part of a screen.
type SessionState struct {
	Mode       Mode         `json:"mode"`
	Difficulty Difficulty   `json:"difficulty,omitempty"`
	Score      int          `json:"score"`
	TimeLeft   int          `json:"time_left"`
	HintUsed   bool         `json:"hint_used"`
	HighScore  int          `json:"high_score"`
	Question   *Question    `json:"question,omitempty"`
	Answers    AnswerStatus `json:"answers"`
}

// Snapshot is the read model handed to render listeners.
type Snapshot struct {
	SessionState
	Title          string         `json:"title"`
	PromptVisible  bool           `json:"prompt_visible"`
	Shaking        bool           `json:"shaking"`
	Celebrating    bool           `json:"celebrating"`
	NewRecord      bool           `json:"new_record"`
	Stage          Stage          `json:"stage,omitempty"`
	SelectedNumber *int           `json:"selected_number,omitempty"`
	Highlight      int            `json:"highlight"`
	Counting       bool           `json:"counting"`
	Speaking       bool           `json:"speaking"`
	Stages         []StageSummary `json:"stages,omitempty"`
}
