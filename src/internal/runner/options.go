package runner

const (
	RUN_MODE_GITHUB = "github"
	RUN_MODE_LOCAL  = "local"

	SUMMARY_FILE_NAME = "jardiff-summary.md"
)

type Options struct {
	// Run mode
	RunMode string // "github" or "local"

	// Common options
	OldPath       string // directory holding the old archive set
	NewPath       string // directory holding the new archive set
	ConfigPath    string // empty searches the XDG config dirs
	OutputDir     string // empty means the parent of NewPath
	TemplatesPath string

	// Overrides of the config file, zero values keep the file's settings
	DecompilerCmd string
	Workers       int
	StripVersions bool

	EnableExportReport bool
	EnableTracing      bool

	// GitHub mode options
	GhRepo     string
	GhPrNumber int
}
