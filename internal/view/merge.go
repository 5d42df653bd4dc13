// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package view

// Map is the data handed to templates.
type Map = map[string]any

// Merge combines the three data layers into a new map. Later layers win:
// defaults < locals < data. The merge is shallow; a key present in a later
// layer replaces the earlier value outright. Nil layers are skipped.
func Merge(defaults, locals, data Map) Map {
	out := make(Map, len(defaults)+len(locals)+len(data))
	for _, layer := range [...]Map{defaults, locals, data} {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}
