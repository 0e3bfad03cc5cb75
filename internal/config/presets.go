package config

import "sort"

type Preset struct {
	Algorithm     string
	ObstacleCount int
	GridSize      int
	Description   string
}

var Presets = map[string]*Preset{
	"sparse": {Algorithm: "dijkstra", ObstacleCount: 20, GridSize: 20, Description: "few walls, wide sweep"},
	"dense":  {Algorithm: "astar", ObstacleCount: 120, GridSize: 20, Description: "crowded field"},
	"maze":   {Algorithm: "jps", ObstacleCount: 160, GridSize: 20, Description: "narrow corridors"},
	"large":  {Algorithm: "astar", ObstacleCount: 600, GridSize: 50, Description: "50x50 board"},
	"empty":  {Algorithm: "dijkstra", ObstacleCount: 0, GridSize: 20, Description: "no obstacles"},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
