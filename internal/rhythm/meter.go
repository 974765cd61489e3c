package rhythm

import (
	"math"

	"github.com/cartomix/mixcraft/internal/model"
)

var numeratorPreference = map[int]float64{4: 3, 3: 2, 6: 1}

// inferMeter folds per-beat energies over candidate bar lengths 2..12 and
// picks the (numerator, offset) that maximises a preference-weighted
// z-score of the folded phase means, per §4.2 step 3.
func inferMeter(energies []float64) (m model.Meter, offset int) {
	if len(energies) < 4 {
		return model.Meter{Numerator: 4, Denominator: 4}, 0
	}

	bestScore := math.Inf(-1)
	bestNum, bestOffset := 4, 0

	for num := 2; num <= 12; num++ {
		phaseSums := make([]float64, num)
		phaseCounts := make([]int, num)
		for i, e := range energies {
			p := i % num
			phaseSums[p] += e
			phaseCounts[p]++
		}
		phaseMeans := make([]float64, num)
		for p := 0; p < num; p++ {
			if phaseCounts[p] > 0 {
				phaseMeans[p] = phaseSums[p] / float64(phaseCounts[p])
			}
		}

		var mean, variance float64
		for _, v := range phaseMeans {
			mean += v
		}
		mean /= float64(num)
		for _, v := range phaseMeans {
			variance += (v - mean) * (v - mean)
		}
		variance /= float64(num)
		std := math.Sqrt(variance)

		for offsetCand := 0; offsetCand < num; offsetCand++ {
			var z float64
			if std > 1e-9 {
				z = (phaseMeans[offsetCand] - mean) / std
			}
			score := z + numeratorPreference[num]
			if score > bestScore {
				bestScore = score
				bestNum = num
				bestOffset = offsetCand
			}
		}
	}

	denominator := 4
	if bestNum == 6 || bestNum == 9 || bestNum == 12 {
		denominator = 8
	}
	return model.Meter{Numerator: bestNum, Denominator: denominator}, bestOffset
}

// downbeats takes every numerator-th beat starting at offset.
func downbeats(beatsMs []int64, numerator, offset int) []int64 {
	if offset >= numerator {
		offset = 0
	}
	var out []int64
	for i := offset; i < len(beatsMs); i += numerator {
		out = append(out, beatsMs[i])
	}
	return out
}
