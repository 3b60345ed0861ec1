package quiz

import (
	"math/rand"
	"time"

	"github.com/vytor/sayilar/internal/models"
)

// OptionCount is the number of buttons shown per round.
const OptionCount = 4

// Generator produces quiz rounds. Not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator uses rng as its only source of randomness. A nil rng is seeded from the clock.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Generate draws a target from the difficulty's range and fills the remaining
// options with distinct values from the same range, in uniformly random order.
func (g *Generator) Generate(d models.Difficulty) models.Question {
	min, max := d.Range()
	span := max - min + 1
	count := OptionCount
	if count > span {
		count = span
	}

	target := min + g.rng.Intn(span)
	options := make([]int, 0, count)
	options = append(options, target)
	seen := map[int]bool{target: true}

	for len(options) < count {
		r := min + g.rng.Intn(span)
		if seen[r] {
			continue
		}
		seen[r] = true
		options = append(options, r)
	}

	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return models.Question{Target: target, Options: options}
}
