package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one item in the output manifest.
type ManifestEntry struct {
	Kind     string   `json:"kind"`
	Index    int      `json:"index"`
	Name     string   `json:"name"`
	OK       bool     `json:"ok"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	Vertices   int      `json:"vertices,omitempty"`
	Faces      int      `json:"faces,omitempty"`
	Groups     int      `json:"groups,omitempty"`
	Textures   []string `json:"textures,omitempty"`
	Bones      int      `json:"bones,omitempty"`
	Animations []string `json:"animations,omitempty"`
	Meshes     []int    `json:"meshes,omitempty"`
	Skeletons  []int    `json:"skeletons,omitempty"`
}

// Manifest summarises results.
func Manifest(results []Result) []ManifestEntry {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		e := ManifestEntry{
			Kind:     r.Kind.String(),
			Index:    r.Index,
			Name:     r.Name,
			OK:       r.Success,
			Error:    r.Error,
			Warnings: r.Warnings,
		}
		switch {
		case r.Mesh != nil:
			e.Vertices = len(r.Mesh.Positions)
			e.Faces = len(r.Mesh.Faces)
			e.Groups = len(r.Mesh.MaterialGroups)
		case r.Material != nil:
			e.Textures = r.Material.Textures
		case r.Skeleton != nil:
			e.Bones = len(r.Skeleton.Bones)
			e.Meshes = r.Skeleton.Meshes
			if r.Animations != nil {
				e.Animations = r.Animations.Names()
			}
		case r.Actor != nil:
			e.Meshes = r.Actor.Meshes
			e.Skeletons = r.Actor.Skeletons
		}
		entries[i] = e
	}
	return entries
}

// WriteManifest writes the manifest of results to path as JSON.
func WriteManifest(path string, results []Result) error {
	data, err := json.MarshalIndent(Manifest(results), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
