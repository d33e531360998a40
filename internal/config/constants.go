package config

const SourceFileExt = ".depc"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".depc"}

// SettingsFileName is looked up in the working directory when no -config flag is given.
const SettingsFileName = "depc.yaml"

// Proof search limits.
const (
	// DefaultMaxSearchDepth is how many nested sub-searches one goal may spawn.
	DefaultMaxSearchDepth = 4
	// DefaultMaxSearchSteps bounds the total number of task steps of one search.
	DefaultMaxSearchSteps = 20000
)

// Normalization limits. Reduction is not guaranteed to terminate, so every
// normalization loop gives up after a fixed number of steps.
const (
	MaxBetaSteps      = 1000
	MaxNormalizeSteps = 2000
)

// PreludeModuleName is the module name the prelude is imported under.
// It is empty so prelude symbols print unqualified.
const PreludeModuleName = ""

// Names of prelude symbols the typechecker relies on.
const (
	SliceFuncName = "slice"
)

// Diagnostics color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)
