package scene

import (
	"math/rand"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// DefaultCameraConfig is the view of the random sphere field used by the default scene
func DefaultCameraConfig() renderer.CameraConfig {
	return renderer.CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 1, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20.0,
		AspectRatio:   16.0 / 9.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}
}

// NewDefaultScene creates the random sphere field: a huge ground sphere, a
// 22x22 grid of small randomly surfaced spheres and three large feature spheres.
// The layout is drawn from a generator seeded with seed, so equal seeds give
// equal worlds.
func NewDefaultScene(seed int64, cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := applyCameraOverrides(DefaultCameraConfig(), cameraOverrides)

	samplingConfig := renderer.DefaultSamplingConfig()
	samplingConfig.Width = 400
	samplingConfig.Height = heightFor(samplingConfig.Width, cameraConfig.AspectRatio)
	samplingConfig.Seed = seed

	s := newScene(cameraConfig, samplingConfig)
	random := rand.New(rand.NewSource(seed))

	s.AddSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	// Keep the small spheres clear of the big metal one
	clearing := core.NewVec3(4, 0.2, 0)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := random.Float64()
			center := core.NewVec3(
				float64(a)+0.9*random.Float64(),
				0.2,
				float64(b)+0.9*random.Float64(),
			)

			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			var mat material.Material
			switch {
			case chooseMat < 0.4:
				albedo := core.RandomVec3(random).MultiplyVec(core.RandomVec3(random))
				mat = material.NewLambertian(albedo)
			case chooseMat < 0.7:
				albedo := core.RandomVec3(random).MultiplyVec(core.RandomVec3(random))
				fuzz := 0.2 * random.Float64()
				mat = material.NewMetal(albedo, fuzz)
			default:
				mat = material.NewDielectric(1.5)
			}
			s.AddSphere(center, 0.2, mat)
		}
	}

	s.AddSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.5))
	s.AddSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1)))
	s.AddSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0))

	return s
}

// FlyByCameraConfig returns the camera for frame n (1-based) of the fly-by:
// the eye drifts from (13,2,3) toward the origin and upward while staying
// aimed at (0,1,0).
func FlyByCameraConfig(frame int) renderer.CameraConfig {
	t := float64(frame) / 20.0
	config := DefaultCameraConfig()
	config.Center = core.NewVec3(13-t, 2+0.1*t, 3-t)
	return config
}
