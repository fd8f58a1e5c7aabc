package ports

import (
	"context"
	"strings"
)

// ProcessKind tags a process with the step it performs.
type ProcessKind string

const (
	// KindCatalogFetch fetches the boundary archive.
	KindCatalogFetch ProcessKind = "catalog-fetch"
	// KindCatalogExtract unpacks the boundary archive.
	KindCatalogExtract ProcessKind = "catalog-extract"
	// KindDownload downloads a regional extract.
	KindDownload ProcessKind = "download"
	// KindClip clips an extract to a poly file.
	KindClip ProcessKind = "clip"
	// KindUpdate applies incremental changes to an extract.
	KindUpdate ProcessKind = "update"
	// KindPlanetExtract cuts an extract out of the planet file.
	KindPlanetExtract ProcessKind = "planet-extract"
)

// Command describes an external tool invocation.
type Command struct {
	Kind ProcessKind
	Name string
	Args []string
	Dir  string

	// NoopMarker, when found in the output, classifies the run as a no-op
	// regardless of the exit code.
	NoopMarker string
	// SuccessMarker, when set, must appear in the output of a successful run.
	SuccessMarker string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// OutcomeKind classifies how a process ended.
type OutcomeKind uint8

const (
	// OutcomeSuccess means the tool completed its work.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeNoop means the tool reported that nothing needed to be done.
	OutcomeNoop
	// OutcomeKilled means the process was killed on request.
	OutcomeKilled
	// OutcomeFailed means the tool could not be started or did not succeed.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoop:
		return "noop"
	case OutcomeKilled:
		return "killed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the single result delivered for every started process.
type Outcome struct {
	Kind     OutcomeKind
	ExitCode int
	// Output is the tail of the combined stdout and stderr.
	Output string
	// Err describes the failure for OutcomeFailed.
	Err error
}

// Process is a running external tool.
type Process interface {
	// ID is a unique identifier used to correlate log lines.
	ID() string
	Kind() ProcessKind
	// Kill terminates the process. The outcome will be OutcomeKilled.
	Kill()
	// Done delivers exactly one outcome and is then closed.
	Done() <-chan Outcome
}

// ProcessRunner spawns external tools.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type ProcessRunner interface {
	// Start spawns the command. It never fails synchronously: spawn errors are
	// reported as an OutcomeFailed on the returned process.
	Start(ctx context.Context, cmd Command) Process
}

// Toolchain builds the command lines of the external tools.
type Toolchain interface {
	FetchCatalog(sourceURL, dir string) Command
	ExtractArchive(archive, dir string) Command
	Download(url, out string) Command
	Update(in, out, tempDir string) Command
	Clip(in, poly, out string) Command
	PlanetExtract(planet, poly, out string) Command
}
