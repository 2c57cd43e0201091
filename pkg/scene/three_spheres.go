package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// NewThreeSpheresScene creates the material showcase: a hollow glass bubble,
// a diffuse sphere and a fuzzy metal sphere side by side on a ground sphere.
func NewThreeSpheresScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		Center:      core.NewVec3(-2, 2, 1),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        20.0,
		AspectRatio: 16.0 / 9.0,
		Aperture:    0.1,
		// Focus on the centre sphere
		FocusDistance: 0.0,
	}
	cameraConfig := applyCameraOverrides(defaultCameraConfig, cameraOverrides)

	samplingConfig := renderer.DefaultSamplingConfig()
	samplingConfig.SamplesPerPixel = 50
	samplingConfig.MaxDepth = 20
	samplingConfig.Height = heightFor(samplingConfig.Width, cameraConfig.AspectRatio)

	s := newScene(cameraConfig, samplingConfig)

	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	glass := material.NewDielectric(1.5)
	gold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)

	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, ground)
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, center)
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.5, glass)
	// Negative radius flips the normals inward, turning the pair into a thin shell
	s.AddSphere(core.NewVec3(-1, 0, -1), -0.45, glass)
	s.AddSphere(core.NewVec3(1, 0, -1), 0.5, gold)

	return s
}
