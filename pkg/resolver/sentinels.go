package resolver

// Reserved sentinel strings and markers the dispatch orchestrator
// recognizes before doing any real resolution work (spec §6, "Reserved
// sentinels").
const (
	browserExternalID  = "__vite-browser-external"
	commonjsProxyFile  = "commonjsHelpers.js"
	commonjsProxyQuery = "?commonjs"
	fsEscapePrefix     = "/@fs/"
)

// OptimizableEntryExtensions names the extensions eligible for optimizer
// hand-off (spec §4.7 post-processing's OPTIMIZABLE_ENTRY_RE).
var optimizableEntryExtensions = map[string]bool{
	".js":  true,
	".mjs": true,
	".cjs": true,
	".ts":  true,
	".tsx": true,
	".jsx": true,
}

func isOptimizableEntry(path string) bool {
	return optimizableEntryExtensions[extOf(path)]
}
