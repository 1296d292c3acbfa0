// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Plot view with fix estimate, GeoJSON export, Prometheus metrics
// 0.2.0 - JPL Horizons lookup with auto fallback, saved sights, preferences file
// 0.1.0 - Initial release: sight worksheet TUI, headless reduction
