// Package prelude holds the source of the module every depc module imports.
package prelude

import _ "embed"

// Source is the text of prelude.depc.
//
//go:embed prelude.depc
var Source string

// FileName is the name diagnostics use for prelude positions.
const FileName = "<prelude>"
