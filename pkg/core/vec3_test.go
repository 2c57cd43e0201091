package core

import (
	"math"
	"math/rand"
	"testing"
)

func vecClose(a, b Vec3, tolerance float64) bool {
	return a.Subtract(b).Length() <= tolerance
}

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, -5, 6)

	tests := []struct {
		name     string
		result   Vec3
		expected Vec3
	}{
		{"Add", a.Add(b), NewVec3(5, -3, 9)},
		{"Subtract", a.Subtract(b), NewVec3(-3, 7, -3)},
		{"Multiply", a.Multiply(2), NewVec3(2, 4, 6)},
		{"Divide", b.Divide(2), NewVec3(2, -2.5, 3)},
		{"MultiplyVec", a.MultiplyVec(b), NewVec3(4, -10, 18)},
		{"Negate", a.Negate(), NewVec3(-1, -2, -3)},
		{"Cross", NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)), NewVec3(0, 0, 1)},
		{"Lerp midpoint", a.Lerp(b, 0.5), NewVec3(2.5, -1.5, 4.5)},
		{"Sqrt", NewVec3(4, 9, 0.25).Sqrt(), NewVec3(2, 3, 0.5)},
		{"Clamp", NewVec3(-1, 0.5, 2).Clamp(0, 0.999), NewVec3(0, 0.5, 0.999)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !vecClose(tt.result, tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, tt.result)
			}
		})
	}

	if got := a.Dot(b); got != 12 {
		t.Errorf("Expected dot 12, got %f", got)
	}
	if got := NewVec3(3, 4, 0).Length(); got != 5 {
		t.Errorf("Expected length 5, got %f", got)
	}
	if got := NewVec3(3, 4, 0).LengthSquared(); got != 25 {
		t.Errorf("Expected squared length 25, got %f", got)
	}
}

func TestVec3_AlgebraicProperties(t *testing.T) {
	random := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		a := RandomVec3Range(random, -10, 10)
		b := RandomVec3Range(random, -10, 10)

		if math.Abs(a.Dot(b)-b.Dot(a)) > 1e-12 {
			t.Fatalf("Dot not symmetric for %v, %v", a, b)
		}
		if !vecClose(a.Cross(b), b.Cross(a).Negate(), 1e-9) {
			t.Fatalf("Cross not anti-symmetric for %v, %v", a, b)
		}
		if a.LengthSquared() > 0 {
			if l := a.Normalize().Length(); math.Abs(l-1) > 1e-12 {
				t.Fatalf("Normalized length %f for %v", l, a)
			}
		}
	}
}

func TestVec3_NormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Expected zero vector, got %v", got)
	}
}

func TestVec3_NearZero(t *testing.T) {
	if !NewVec3(1e-9, -1e-9, 0).NearZero() {
		t.Error("Expected tiny vector to be near zero")
	}
	if NewVec3(1e-9, 1e-3, 0).NearZero() {
		t.Error("Expected vector with a 1e-3 component not to be near zero")
	}
}

func TestReflect(t *testing.T) {
	v := NewVec3(1, -1, 0)
	n := NewVec3(0, 1, 0)

	if got := Reflect(v, n); !vecClose(got, NewVec3(1, 1, 0), 1e-12) {
		t.Errorf("Expected (1,1,0), got %v", got)
	}
}

func TestRefract(t *testing.T) {
	n := NewVec3(0, 1, 0)

	t.Run("Normal incidence passes straight through", func(t *testing.T) {
		uv := NewVec3(0, -1, 0)
		got := Refract(uv, n, 1.0/1.5)
		if !vecClose(got, uv, 1e-12) {
			t.Errorf("Expected %v, got %v", uv, got)
		}
	})

	t.Run("Snell's law holds", func(t *testing.T) {
		uv := NewVec3(1, -1, 0).Normalize()
		eta := 1.0 / 1.5
		got := Refract(uv, n, eta)

		sinIn := math.Sqrt(1 - math.Pow(uv.Negate().Dot(n), 2))
		sinOut := math.Sqrt(1 - math.Pow(got.Negate().Dot(n), 2))
		if math.Abs(sinOut-eta*sinIn) > 1e-9 {
			t.Errorf("Expected sin(out)=%f, got %f", eta*sinIn, sinOut)
		}
		if math.Abs(got.Length()-1) > 1e-9 {
			t.Errorf("Refracted unit vector should stay unit length, got %f", got.Length())
		}
	})

	t.Run("Critical angle stays finite", func(t *testing.T) {
		eta := 1.5
		sinIn := 1 / eta
		uv := NewVec3(sinIn, -math.Sqrt(1-sinIn*sinIn), 0)
		got := Refract(uv, n, eta)

		if math.IsNaN(got.X) || math.IsNaN(got.Y) || math.IsNaN(got.Z) {
			t.Fatalf("Refraction at the critical angle produced NaN: %v", got)
		}
		// The refracted ray runs along the surface
		if math.Abs(got.Y) > 1e-6 || math.Abs(got.X-1) > 1e-6 {
			t.Errorf("Expected a grazing ray along +x, got %v", got)
		}
	})
}

func TestReflectance(t *testing.T) {
	// Normal incidence on glass: ((1-1.5)/(1+1.5))^2 = 0.04
	if got := Reflectance(1.0, 1.5); math.Abs(got-0.04) > 1e-12 {
		t.Errorf("Expected 0.04, got %f", got)
	}
	// Grazing incidence reflects everything
	if got := Reflectance(0.0, 1.5); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("Expected 1.0, got %f", got)
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 1, 1), NewVec3(0, 0, -2))

	tests := []struct {
		t        float64
		expected Vec3
	}{
		{0, NewVec3(1, 1, 1)},
		{1, NewVec3(1, 1, -1)},
		{-0.5, NewVec3(1, 1, 2)},
	}

	for _, tt := range tests {
		if got := ray.At(tt.t); !vecClose(got, tt.expected, 1e-12) {
			t.Errorf("At(%f): expected %v, got %v", tt.t, tt.expected, got)
		}
	}
}
