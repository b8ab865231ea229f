package systems

import (
	"github.com/pthm-cable/gridlife/components"
)

// Sense scans the square of the agent's food radius and fills dst.
// Neighbor cells are clamped to the grid, so cells at the map edge can be
// counted more than once. Peer counts include the agent itself.
func Sense(dst *components.Senses, st *components.State, g *components.Genome, idx *SpatialIndex, food *FoodSet) {
	*dst = components.Senses{}

	w, h := idx.width, idx.height
	fr := g.FoodRadius

	var energySum, energyMax float64
	var energyCount int

	// Minimum per-axis distances; 0 means none seen.
	var upD, downD, leftD, rightD int

	for dx := -fr; dx <= fr; dx++ {
		for dy := -fr; dy <= fr; dy++ {
			tx := clampInt(st.X+dx, 0, w-1)
			ty := clampInt(st.Y+dy, 0, h-1)

			for _, o := range idx.At(tx, ty) {
				dst.AgentCount++
				if o.Color == g.Color {
					dst.Friends++
				} else {
					dst.Others++
				}
				energySum += o.Energy
				if o.Energy > energyMax {
					energyMax = o.Energy
				}
				energyCount++
			}

			if !food.Has(tx, ty) {
				continue
			}
			dst.FoodCount++
			if dx == 0 && dy == 0 {
				continue
			}

			// Dominant axis; ties count on both axes.
			if absInt(dx) >= absInt(dy) {
				if dx > 0 {
					dst.FoodRight++
				} else if dx < 0 {
					dst.FoodLeft++
				}
			}
			if absInt(dy) >= absInt(dx) {
				if dy > 0 {
					dst.FoodDown++
				} else if dy < 0 {
					dst.FoodUp++
				}
			}

			switch {
			case dx == 0 && dy < 0:
				upD = minDist(upD, -dy)
			case dx == 0 && dy > 0:
				downD = minDist(downD, dy)
			case dy == 0 && dx < 0:
				leftD = minDist(leftD, -dx)
			case dy == 0 && dx > 0:
				rightD = minDist(rightD, dx)
			}
		}
	}

	if energyCount > 0 {
		dst.AvgEnergy = energySum / float64(energyCount)
	}
	dst.MaxEnergy = energyMax

	r := fr + 1
	dst.FoodUpDist = normDist(upD, r)
	dst.FoodDownDist = normDist(downD, r)
	dst.FoodLeftDist = normDist(leftD, r)
	dst.FoodRightDist = normDist(rightD, r)

	dst.EdgeX = edgeDistance(st.X, w)
	dst.EdgeY = edgeDistance(st.Y, h)
}

func minDist(old, d int) int {
	if old == 0 || d < old {
		return d
	}
	return old
}

// normDist maps a distance to d/r, with "none seen" at 1.
func normDist(d, r int) float64 {
	if d == 0 {
		d = r
	}
	return float64(d) / float64(r)
}

// edgeDistance is the normalized distance to the nearest edge along one axis.
func edgeDistance(v, size int) float64 {
	return float64(min(v, size-1-v)) / float64(size-1)
}
