package cache

import "sort"

// ModelKey derives the cache key of a parsed architecture from the raw
// document bytes. Any edit to the file changes the key.
func ModelKey(doc []byte) string {
	return hashKey("model", Hash(doc))
}

// GeometryKey derives the cache key of a layout plan. Mode selections and
// collapsed paths are sorted first so equivalent requests share a key.
func GeometryKey(modelHash, tile string, modes map[string]string, collapsed []string, passes int) string {
	modePairs := make([][2]string, 0, len(modes))
	for path, mode := range modes {
		modePairs = append(modePairs, [2]string{path, mode})
	}
	sort.Slice(modePairs, func(i, j int) bool { return modePairs[i][0] < modePairs[j][0] })

	sortedCollapsed := append([]string(nil), collapsed...)
	sort.Strings(sortedCollapsed)

	return hashKey("geometry", modelHash, tile, modePairs, sortedCollapsed, passes)
}

// SVGKey derives the cache key of a rendered SVG from the model hash, the
// block being drawn, the mode it was resolved in, and the render options.
func SVGKey(modelHash, block, mode, engine string, detailed bool) string {
	return hashKey("svg", modelHash, block, mode, engine, detailed)
}
