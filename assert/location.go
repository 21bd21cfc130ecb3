package assert

import "runtime"

// LocationInfo captures where an assertion call-site lives in source. It is
// reporting metadata only; site identity is derived from the message (see
// makeKey). Class is always empty in Go and BeginColumn is always 0, since
// runtime.Caller does not expose columns, but both fields stay on the wire
// for cross-language consistency of the record shape.
type LocationInfo struct {
	Filename    string
	Function    string
	Class       string
	BeginLine   int
	BeginColumn int
}

// callerLocation captures the frame skip levels above this function.
// skip=1 is the caller of callerLocation, skip=2 the caller's caller.
func callerLocation(skip int) LocationInfo {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return LocationInfo{}
	}
	loc := LocationInfo{
		Filename:  file,
		BeginLine: line,
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		loc.Function = fn.Name()
	}
	return loc
}

func (l LocationInfo) toMap() map[string]any {
	return map[string]any{
		"filename":     l.Filename,
		"function":     l.Function,
		"class":        l.Class,
		"begin_line":   l.BeginLine,
		"begin_column": l.BeginColumn,
	}
}
