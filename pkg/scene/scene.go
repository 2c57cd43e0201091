package scene

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *renderer.Camera
	World          *geometry.HittableList // Objects in the scene
	TopColor       core.Vec3              // Background color straight up
	BottomColor    core.Vec3              // Background color straight down
	SamplingConfig renderer.SamplingConfig
	CameraConfig   renderer.CameraConfig
}

// GetCamera returns the scene camera
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetWorld returns the scene geometry as a single shape
func (s *Scene) GetWorld() geometry.Shape {
	return s.World
}

// GetBackgroundColors returns the sky gradient endpoints
func (s *Scene) GetBackgroundColors() (topColor, bottomColor core.Vec3) {
	return s.TopColor, s.BottomColor
}

// AddSphere adds a sphere to the world
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) {
	s.World.Add(geometry.NewSphere(center, radius, mat))
}

// WithCamera returns a scene that shares this scene's world but views it
// through a different camera. The world is never copied.
func (s *Scene) WithCamera(cameraConfig renderer.CameraConfig) *Scene {
	merged := renderer.MergeCameraConfig(s.CameraConfig, cameraConfig)
	return &Scene{
		Camera:         renderer.NewCamera(merged),
		World:          s.World,
		TopColor:       s.TopColor,
		BottomColor:    s.BottomColor,
		SamplingConfig: s.SamplingConfig,
		CameraConfig:   merged,
	}
}

// newScene assembles an empty scene with the blue sky gradient
func newScene(cameraConfig renderer.CameraConfig, samplingConfig renderer.SamplingConfig) *Scene {
	return &Scene{
		Camera:         renderer.NewCamera(cameraConfig),
		World:          geometry.NewHittableList(),
		TopColor:       core.NewVec3(0.5, 0.7, 1.0), // Blue sky
		BottomColor:    core.NewVec3(1.0, 1.0, 1.0), // White horizon
		SamplingConfig: samplingConfig,
		CameraConfig:   cameraConfig,
	}
}

// applyCameraOverrides merges the first override, if any, into the default config
func applyCameraOverrides(defaults renderer.CameraConfig, overrides []renderer.CameraConfig) renderer.CameraConfig {
	if len(overrides) == 0 {
		return defaults
	}
	return renderer.MergeCameraConfig(defaults, overrides[0])
}

// heightFor derives the image height from a width and aspect ratio
func heightFor(width int, aspectRatio float64) int {
	height := int(math.Round(float64(width) / aspectRatio))
	if height < 1 {
		height = 1
	}
	return height
}
