package align

import (
	"fmt"
	"math"
)

// PathStep is one diagonal match on the alignment path: line token i was
// matched against caption token j.
type PathStep struct {
	LineToken    int `json:"line_token"`
	CaptionToken int `json:"caption_token"`
}

// AlignmentError reports that no finite-cost path connects the first and last
// tokens within the configured band. Partial carries the best-effort path up
// to the deepest reachable row for diagnosis.
type AlignmentError struct {
	LineTokens    int
	CaptionTokens int
	BandRadius    int
	ReachedRow    int
	Partial       []PathStep
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf(
		"alignment failed: no path within band radius %d (reached row %d of %d, %d caption tokens, %d partial matches)",
		e.BandRadius, e.ReachedRow, e.LineTokens, e.CaptionTokens, len(e.Partial),
	)
}

const (
	moveNone int8 = -1
	moveDiag int8 = 0
	moveUp   int8 = 1 // consume a line token (skip against captions)
	moveLeft int8 = 2 // consume a caption token
)

// bandedDTW aligns src (line tokens) against ref (caption tokens) inside a
// diagonal band of the given radius. The band is centered on the scaled
// diagonal j = i*m/n so sequences of unequal length stay connectable. On
// ties the diagonal move wins, which keeps the correspondence one-to-one and
// avoids drift. The result is the ordered list of diagonal matches.
func bandedDTW(src, ref []string, radius int, indel float64) ([]PathStep, error) {
	n, m := len(src), len(ref)
	if n == 0 || m == 0 {
		return nil, nil
	}

	width := 2*radius + 1
	center := func(i int) int {
		return i * m / n
	}
	// offset returns the band column of ref index j in row i, or -1 when j is
	// outside the band.
	offset := func(i, j int) int {
		k := j - center(i) + radius
		if k < 0 || k >= width {
			return -1
		}
		return k
	}

	cost := make([][]float64, n+1)
	move := make([][]int8, n+1)
	for i := 0; i <= n; i++ {
		cost[i] = make([]float64, width)
		move[i] = make([]int8, width)
		for k := 0; k < width; k++ {
			cost[i][k] = math.Inf(1)
			move[i][k] = moveNone
		}
	}
	cost[0][offset(0, 0)] = 0

	relax := func(i, j int, c float64, mv int8) {
		k := offset(i, j)
		if k < 0 {
			return
		}
		// Strictly-less keeps the first writer on ties; the diagonal move is
		// always relaxed first, so it wins them.
		if c < cost[i][k] {
			cost[i][k] = c
			move[i][k] = mv
		}
	}

	for i := 0; i <= n; i++ {
		lo, hi := center(i)-radius, center(i)+radius
		if lo < 0 {
			lo = 0
		}
		if hi > m {
			hi = m
		}
		for j := lo; j <= hi; j++ {
			k := offset(i, j)
			if k < 0 || math.IsInf(cost[i][k], 1) {
				continue
			}
			c := cost[i][k]
			if i < n && j < m {
				relax(i+1, j+1, c+dissimilarity(src[i], ref[j]), moveDiag)
			}
			if i < n {
				relax(i+1, j, c+indel, moveUp)
			}
			if j < m {
				relax(i, j+1, c+indel, moveLeft)
			}
		}
	}

	// Pick the cheapest finite end cell in the last row; lowest j on ties so
	// identical inputs always backtrack the same path.
	endJ, endCost := -1, math.Inf(1)
	for j := 0; j <= m; j++ {
		k := offset(n, j)
		if k < 0 {
			continue
		}
		if cost[n][k] < endCost {
			endCost = cost[n][k]
			endJ = j
		}
	}
	if endJ < 0 {
		return nil, partialError(cost, move, offset, n, m, radius)
	}
	return backtrace(move, offset, n, endJ), nil
}

// backtrace follows recorded moves from (i, j) back to the origin, collecting
// diagonal matches in forward order.
func backtrace(move [][]int8, offset func(int, int) int, i, j int) []PathStep {
	var rev []PathStep
	for i > 0 || j > 0 {
		k := offset(i, j)
		if k < 0 {
			break
		}
		switch move[i][k] {
		case moveDiag:
			rev = append(rev, PathStep{LineToken: i - 1, CaptionToken: j - 1})
			i, j = i-1, j-1
		case moveUp:
			i--
		case moveLeft:
			j--
		default:
			// origin or unreachable cell
			i, j = 0, 0
		}
	}
	for l, r := 0, len(rev)-1; l < r; l, r = l+1, r-1 {
		rev[l], rev[r] = rev[r], rev[l]
	}
	return rev
}

// partialError builds an AlignmentError carrying the best path to the deepest
// row the band managed to reach.
func partialError(cost [][]float64, move [][]int8, offset func(int, int) int, n, m, radius int) *AlignmentError {
	bestI, bestJ, bestCost := 0, 0, math.Inf(1)
	for i := n; i >= 0; i-- {
		for j := 0; j <= m; j++ {
			k := offset(i, j)
			if k < 0 || math.IsInf(cost[i][k], 1) {
				continue
			}
			if bestI < i || (bestI == i && cost[i][k] < bestCost) {
				bestI, bestJ, bestCost = i, j, cost[i][k]
			}
		}
		if bestI == i && !math.IsInf(bestCost, 1) {
			break
		}
	}
	return &AlignmentError{
		LineTokens:    n,
		CaptionTokens: m,
		BandRadius:    radius,
		ReachedRow:    bestI,
		Partial:       backtrace(move, offset, bestI, bestJ),
	}
}
