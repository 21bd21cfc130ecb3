package assert

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// CatalogEnvVar names a file holding predeclared assertion definitions, one
// JSON record per line. Instrumentation tooling writes such catalogs so the
// engine learns about every site before any of them runs.
const CatalogEnvVar = "VOIDSTAR_SDK_CATALOG"

// maxExcerptWidth bounds how much of an unparsable catalog line is echoed.
const maxExcerptWidth = 40

// catalogRecord is the line format of an assertion catalog.
type catalogRecord struct {
	Condition   bool            `json:"condition"`
	Message     string          `json:"message"`
	Details     map[string]any  `json:"details"`
	Location    catalogLocation `json:"location"`
	Hit         bool            `json:"hit"`
	MustHit     bool            `json:"must_hit"`
	AssertType  string          `json:"assert_type"`
	DisplayType string          `json:"display_type"`
	ID          string          `json:"id"`
}

type catalogLocation struct {
	Filename    string `json:"filename"`
	Function    string `json:"function"`
	Class       string `json:"class"`
	BeginLine   int    `json:"begin_line"`
	BeginColumn int    `json:"begin_column"`
}

func init() {
	path := os.Getenv(CatalogEnvVar)
	if path == "" {
		return
	}
	if err := LoadCatalog(path); err != nil {
		fmt.Fprintf(os.Stderr, "voidstar-sdk: ignoring %s=%q: %v\n", CatalogEnvVar, path, err)
	}
}

// LoadCatalog replays every definition in the file at path through the same
// implementation path as live directives, registering each site once.
// Malformed lines are reported to stderr with a truncated excerpt and
// skipped; a catalog never fails the host process beyond the returned error
// for an unreadable file.
func LoadCatalog(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening assertion catalog: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec catalogRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			fmt.Fprintf(os.Stderr, "voidstar-sdk: catalog line %d not parsable as JSON: %s\n",
				lineNo, excerpt(string(line)))
			continue
		}
		Raw(rec.Condition, rec.Message, rec.Details,
			rec.Location.Filename, rec.Location.Function, rec.Location.Class,
			rec.Location.BeginLine, rec.Location.BeginColumn,
			rec.Hit, rec.MustHit,
			AssertType(rec.AssertType), AssertionDisplay(rec.DisplayType), rec.ID)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading assertion catalog: %w", err)
	}
	return nil
}

func excerpt(line string) string {
	if len(line) <= maxExcerptWidth {
		return fmt.Sprintf("%q", line)
	}
	return fmt.Sprintf("%q...", line[:maxExcerptWidth])
}
