package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestRandomVec3Range(t *testing.T) {
	random := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		v := RandomVec3Range(random, -2, 3)
		for _, c := range []float64{v.X, v.Y, v.Z} {
			if c < -2 || c >= 3 {
				t.Fatalf("Component %f outside [-2, 3)", c)
			}
		}
		u := RandomVec3(random)
		for _, c := range []float64{u.X, u.Y, u.Z} {
			if c < 0 || c >= 1 {
				t.Fatalf("Component %f outside [0, 1)", c)
			}
		}
	}
}

func TestRandomInUnitSphere(t *testing.T) {
	random := rand.New(rand.NewSource(42))

	var sum Vec3
	const n = 5000
	for i := 0; i < n; i++ {
		p := RandomInUnitSphere(random)
		if p.LengthSquared() >= 1.0 {
			t.Fatalf("Point %v is outside the unit sphere", p)
		}
		sum = sum.Add(p)
	}

	// Uniform in a ball: mean should sit near the origin
	if mean := sum.Divide(n); mean.Length() > 0.05 {
		t.Errorf("Expected mean near origin, got %v", mean)
	}
}

func TestRandomInUnitDisk(t *testing.T) {
	random := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		p := RandomInUnitDisk(random)
		if p.Z != 0 {
			t.Fatalf("Disk sample %v has non-zero Z", p)
		}
		if p.LengthSquared() >= 1.0 {
			t.Fatalf("Disk sample %v outside unit disk", p)
		}
	}
}

func TestRandomUnitVector(t *testing.T) {
	random := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		v := RandomUnitVector(random)
		if math.Abs(v.Length()-1) > 1e-9 {
			t.Fatalf("Expected unit length, got %f for %v", v.Length(), v)
		}
	}
}

func TestSamplingIsDeterministicPerSeed(t *testing.T) {
	a := rand.New(rand.NewSource(99))
	b := rand.New(rand.NewSource(99))

	for i := 0; i < 100; i++ {
		if RandomUnitVector(a) != RandomUnitVector(b) {
			t.Fatal("Same seed should produce identical sample sequences")
		}
	}
}
