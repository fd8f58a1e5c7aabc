package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskNotFound is returned when a requested task does not exist in the store.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrTaskAlreadyExists is returned when a task with the same coverage is already stored.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrInvalidTaskName is returned when a task name contains characters unusable in file names.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrInvalidTaskID is returned when a task id given on the command line is not a positive integer.
	ErrInvalidTaskID = zerr.New("invalid task id")

	// ErrMissingURL is returned when a task has no extract path assigned.
	ErrMissingURL = zerr.New("task has no extract path")

	// ErrUnknownTaskField is returned when an unsupported task field is updated.
	ErrUnknownTaskField = zerr.New("unknown task field")

	// ErrInvalidCoverage is returned when a coverage value cannot be decoded.
	ErrInvalidCoverage = zerr.New("invalid coverage")

	// ErrUnsupportedGeometry is returned when a coverage geometry is neither a Polygon nor a MultiPolygon.
	ErrUnsupportedGeometry = zerr.New("unsupported coverage geometry")

	// ErrCoverageUnresolved is returned when a region-code coverage has not been resolved to a geometry.
	ErrCoverageUnresolved = zerr.New("coverage region code is not resolved")

	// ErrCatalogUnavailable is returned when no region catalog has been published.
	ErrCatalogUnavailable = zerr.New("region catalog unavailable")

	// ErrCatalogFetchFailed is returned when the boundary archive could not be fetched.
	ErrCatalogFetchFailed = zerr.New("failed to fetch boundary archive")

	// ErrCatalogExtractFailed is returned when the boundary archive could not be unpacked.
	ErrCatalogExtractFailed = zerr.New("failed to extract boundary archive")

	// ErrCatalogRefreshInProgress is returned when a refresh is requested while another is running.
	ErrCatalogRefreshInProgress = zerr.New("catalog refresh already in progress")

	// ErrBoundaryParseFailed is returned when a boundary file cannot be parsed.
	ErrBoundaryParseFailed = zerr.New("failed to parse boundary file")

	// ErrProcessStartFailed is returned when an external tool cannot be spawned.
	ErrProcessStartFailed = zerr.New("failed to start process")

	// ErrProcessFailed is returned when an external tool exits unsuccessfully.
	ErrProcessFailed = zerr.New("process failed")

	// ErrUnexpectedOutput is returned when a tool exits cleanly without reporting success.
	ErrUnexpectedOutput = zerr.New("process output lacks success marker")

	// ErrReplaceFailed is returned when a freshly produced file cannot be moved over the extract.
	ErrReplaceFailed = zerr.New("failed to replace extract")

	// ErrPolyWriteFailed is returned when the poly file for a task cannot be written.
	ErrPolyWriteFailed = zerr.New("failed to write poly file")

	// ErrInvalidTransition is returned when a worker state change is not allowed.
	ErrInvalidTransition = zerr.New("invalid worker state transition")

	// ErrNoExtractSource is returned when neither the catalog nor a planet file can supply an extract.
	ErrNoExtractSource = zerr.New("no extract source for coverage")

	// ErrControllerStopped is returned when a request reaches the controller after shutdown.
	ErrControllerStopped = zerr.New("controller stopped")

	// ErrStoreOpenFailed is returned when the task database cannot be opened.
	ErrStoreOpenFailed = zerr.New("failed to open task store")

	// ErrMigrationFailed is returned when the task database schema cannot be migrated.
	ErrMigrationFailed = zerr.New("failed to migrate task store")

	// ErrConfigReadFailed is returned when the configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config")

	// ErrConfigParseFailed is returned when the configuration cannot be decoded.
	ErrConfigParseFailed = zerr.New("failed to parse config")

	// ErrConfigInvalid is returned when the configuration fails validation.
	ErrConfigInvalid = zerr.New("invalid config")

	// ErrAlreadyRunning is returned when another instance holds the data directory lock.
	ErrAlreadyRunning = zerr.New("another instance is already running")

	// ErrImportFailed is returned when a task import file cannot be processed.
	ErrImportFailed = zerr.New("failed to import tasks")
)
