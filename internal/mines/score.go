package mines

import (
	"math"
	"time"

	"github.com/gammazero/deque"
)

// Calc3BV computes Bechtel's Board Benchmark Value: the least number of
// clicks needed to clear the board. Each opening (a connected blank region
// plus the numbers bordering it) counts once, every numbered cell outside
// an opening counts once. Only mine positions matter, not play history.
func Calc3BV(b *Board) int {
	values := make([]int, len(b.cells))
	for i := range b.cells {
		values[i] = b.MineNeighbors(b.cells[i].Coordinates)
	}

	marked := make([]bool, len(b.cells))
	clicks := 0

	for i := range b.cells {
		if b.cells[i].Mine || marked[i] || values[i] != 0 {
			continue
		}
		clicks++
		marked[i] = true

		var todo deque.Deque[Coordinates]
		todo.PushBack(b.cells[i].Coordinates)
		for todo.Len() > 0 {
			c := todo.PopFront()
			for _, n := range b.Neighbors(c) {
				j := b.index(n)
				if marked[j] || b.cells[j].Mine {
					continue
				}
				marked[j] = true
				if values[j] == 0 {
					todo.PushBack(n)
				}
			}
		}
	}

	for i := range b.cells {
		if !b.cells[i].Mine && !marked[i] {
			clicks++
		}
	}

	return clicks
}

// Stats are frozen onto a game when the alliance wins.
type Stats struct {
	ThreeBV          int           `json:"3bv"`
	ThreeBVPerSecond float64       `json:"3bv_per_second"`
	Efficiency       float64       `json:"efficiency"`
	Score            int           `json:"score"`
	Clicks           int           `json:"clicks"`
	Elapsed          time.Duration `json:"elapsed"`
}

// NewStats derives the victory stats. Elapsed time is floored at one second
// and clicks at one so instant wins stay finite.
func NewStats(threeBV, clicks int, elapsed time.Duration) Stats {
	seconds := max(elapsed.Seconds(), 1)
	perSecond := float64(threeBV) / seconds
	efficiency := float64(threeBV) / float64(max(clicks, 1)) * 100
	return Stats{
		ThreeBV:          threeBV,
		ThreeBVPerSecond: round2(perSecond),
		Efficiency:       round2(efficiency),
		Score:            int(math.Round(1000 * perSecond * efficiency / 100)),
		Clicks:           clicks,
		Elapsed:          elapsed,
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
