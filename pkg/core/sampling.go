package core

import (
	"math/rand"
)

// Every sampler takes the caller's generator explicitly. Renders hand each
// row its own *rand.Rand, so none of these touch shared state.

// RandomVec3 returns a vector with each component uniform in [0, 1)
func RandomVec3(random *rand.Rand) Vec3 {
	return NewVec3(random.Float64(), random.Float64(), random.Float64())
}

// RandomVec3Range returns a vector with each component uniform in [min, max)
func RandomVec3Range(random *rand.Rand, minVal, maxVal float64) Vec3 {
	span := maxVal - minVal
	return NewVec3(
		minVal+span*random.Float64(),
		minVal+span*random.Float64(),
		minVal+span*random.Float64(),
	)
}

// RandomInUnitSphere rejection-samples a point strictly inside the unit sphere
func RandomInUnitSphere(random *rand.Rand) Vec3 {
	for {
		p := RandomVec3Range(random, -1, 1)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}

// RandomInUnitDisk generates a random point in the XY unit disk (for depth of field)
func RandomInUnitDisk(random *rand.Rand) Vec3 {
	for {
		p := NewVec3(2*random.Float64()-1, 2*random.Float64()-1, 0)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}

// RandomUnitVector returns a uniformly distributed direction on the unit sphere
func RandomUnitVector(random *rand.Rand) Vec3 {
	for {
		p := RandomVec3Range(random, -1, 1)
		lensq := p.LengthSquared()
		// reject the tiny core where normalizing would blow up round-off
		if lensq > 1e-160 && lensq < 1.0 {
			return p.Normalize()
		}
	}
}
