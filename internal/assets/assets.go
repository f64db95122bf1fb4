// Package assets holds files compiled into the binary: the fixture suites and
// the dashboard page template.
package assets

import "embed"

// Suites is the embedded fixture file with every built-in test suite.
//
//go:embed suites.yaml
var Suites []byte

// SuitesFileName is the name used when the fixture file is exported.
const SuitesFileName = "suites.yaml"

// Templates holds the dashboard HTML templates under templates/.
//
//go:embed templates/*.html
var Templates embed.FS
