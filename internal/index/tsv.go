package index

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// requiredTSVColumns are the columns a usable TSV file's header must
// declare; a header missing any of them yields zero rows rather than
// rows with silently-empty fields.
var requiredTSVColumns = []string{"content", "name", "type"}

// isGzip detects a gzip stream regardless of file extension (spec
// §4.1 "TSV ingestion contract"), grounded on
// original_source/Backend/services/langchain_retriever.py's
// path_magic.
func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1F && data[1] == 0x8B
}

// tsvRow is one ingested row decoded against the resolved header.
type tsvRow struct {
	values map[string]string
}

// readTSV decodes a TSV file with gzip auto-detection and an
// encoding fallback chain (utf-8, latin-1, cp1252), skipping
// malformed rows rather than failing the load, and returns the rows
// plus the final successful row count (spec §4.1).
func readTSV(path string) ([]tsvRow, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	if isGzip(raw) || strings.HasSuffix(path, ".gz") {
		decompressed, derr := gunzip(raw)
		if derr != nil {
			return nil, 0, derr
		}
		raw = decompressed
	}

	text, err := decodeBestEffort(raw)
	if err != nil {
		return nil, 0, err
	}

	rows, count := parseTSV(text)
	return rows, count, nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// decodeBestEffort tries utf-8, then latin-1, then cp1252, accepting
// the first that succeeds (spec §4.1).
func decodeBestEffort(raw []byte) (string, error) {
	if isValidUTF8(raw) {
		return string(raw), nil
	}
	if decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw); err == nil {
		return string(decoded), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func isValidUTF8(b []byte) bool {
	return utf8.Valid(b)
}

// parseTSV splits text on newlines and tabs, skipping malformed rows
// (column count mismatch against the header) rather than failing the
// whole file.
func parseTSV(text string) ([]tsvRow, int) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var header []string
	var rows []tsvRow
	count := 0
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if first {
			header = fields
			first = false
			if !hasColumns(header, requiredTSVColumns) {
				return nil, 0 // header missing a required column: nothing to load
			}
			continue
		}
		if len(fields) != len(header) {
			continue // malformed row: skip
		}
		values := make(map[string]string, len(header))
		for i, col := range header {
			values[col] = fields[i]
		}
		rows = append(rows, tsvRow{values: values})
		count++
	}
	return rows, count
}

// hasColumns reports whether every column in required appears in header.
func hasColumns(header []string, required []string) bool {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, col := range required {
		if !present[col] {
			return false
		}
	}
	return true
}

func (r tsvRow) column(name string) string {
	return r.values[name]
}
