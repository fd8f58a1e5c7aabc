package logger

var (
	CollectErrorMessages = func(err error) []string {
		entries := collectErrorEntries(err)
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.message)
		}
		return out
	}
	FormatError = func(err error) string {
		return formatErrorEntries(collectErrorEntries(err))
	}
)
