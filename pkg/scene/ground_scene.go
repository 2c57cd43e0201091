package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// NewGroundScene creates the minimal diffuse test scene: a small grey sphere
// resting on a radius-100 ground sphere, seen from the origin along -z.
func NewGroundScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90.0,
		AspectRatio:   16.0 / 9.0,
		FocusDistance: 1.0,
	}
	cameraConfig := applyCameraOverrides(defaultCameraConfig, cameraOverrides)

	samplingConfig := renderer.DefaultSamplingConfig()
	samplingConfig.Height = heightFor(samplingConfig.Width, cameraConfig.AspectRatio)

	s := newScene(cameraConfig, samplingConfig)

	grey := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, grey)
	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, grey)

	return s
}
