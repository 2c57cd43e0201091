package scene

import (
	"fmt"
	"sort"
	"strings"
)

// SceneInfo represents a built-in scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier, accepted by Lookup
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Animated    bool   `json:"animated"`    // Whether the scene has a fly-by camera path
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

type sceneEntry struct {
	info  SceneInfo
	build func(seed int64) *Scene
}

var builtInScenes = []sceneEntry{
	{
		info: SceneInfo{
			ID:          "default",
			Description: "Random field of diffuse, metal and glass spheres",
			Group:       "Showcase",
			Animated:    true,
		},
		build: func(seed int64) *Scene { return NewDefaultScene(seed) },
	},
	{
		info: SceneInfo{
			ID:          "three-spheres",
			Description: "Glass bubble, diffuse and metal spheres side by side",
			Group:       "Showcase",
		},
		build: func(int64) *Scene { return NewThreeSpheresScene() },
	},
	{
		info: SceneInfo{
			ID:          "ground",
			Description: "Single diffuse sphere on a ground sphere",
			Group:       "Test Scenes",
		},
		build: func(int64) *Scene { return NewGroundScene() },
	},
}

// Names returns the IDs of every built-in scene in registration order
func Names() []string {
	names := make([]string, 0, len(builtInScenes))
	for _, entry := range builtInScenes {
		names = append(names, entry.info.ID)
	}
	return names
}

// Lookup builds the named scene. seed only affects scenes with random layouts.
func Lookup(name string, seed int64) (*Scene, error) {
	for _, entry := range builtInScenes {
		if entry.info.ID == name {
			return entry.build(seed), nil
		}
	}
	return nil, fmt.Errorf("unknown scene %q (available: %s)", name, strings.Join(Names(), ", "))
}

// IsAnimated reports whether the named scene supports the fly-by camera path
func IsAnimated(name string) bool {
	for _, entry := range builtInScenes {
		if entry.info.ID == name {
			return entry.info.Animated
		}
	}
	return false
}

// ListAllScenes returns the built-in scenes grouped by category, groups sorted by name
func ListAllScenes() ScenesResponse {
	var response ScenesResponse

	groupMap := make(map[string][]SceneInfo)
	for _, entry := range builtInScenes {
		info := entry.info
		info.DisplayName = titleCase(info.ID)
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	var groupNames []string
	for groupName := range groupMap {
		groupNames = append(groupNames, groupName)
	}
	sort.Strings(groupNames)

	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response
}

// titleCase converts a filename-style string to title case
// e.g., "three-spheres" -> "Three Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
