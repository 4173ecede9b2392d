package coverage

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFailingCaseIDs scans a Schemathesis JUnit XML report and returns
// every test case ID mentioned by a <failure> element. Failure messages
// carry lines like "1. Test Case ID: 7dQuzM"; the bare "Test Case ID:"
// form is accepted as a fallback.
func LoadFailingCaseIDs(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read JUnit %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	ids := make(map[string]struct{})
	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse JUnit %s: %w", path, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "failure" {
			continue
		}
		for _, attr := range start.Attr {
			if attr.Name.Local == "message" {
				collectCaseIDs(attr.Value, ids)
			}
		}
	}
	return ids, nil
}

func collectCaseIDs(message string, ids map[string]struct{}) {
	for _, line := range strings.Split(message, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "1. Test Case ID:"),
			strings.HasPrefix(line, "2. Test Case ID:"),
			strings.HasPrefix(line, "Test Case ID:"):
			_, rest, _ := strings.Cut(line, "Test Case ID:")
			if id := strings.TrimSpace(rest); id != "" {
				ids[id] = struct{}{}
			}
		}
	}
}
