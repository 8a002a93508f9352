// Package citation synthesizes canonical document URLs from
// (type, name) citation pairs (spec §6 "Citation URL synthesis"),
// grounded on
// original_source/Backend/services/get_relevant_docs.py and
// query_processor.py.
package citation

import "strings"

// DocumentsHost is the fixed host citation URLs are rendered against.
// spec.md leaves <documents-host> as a placeholder; this is the one
// concrete value the core needs to produce a testable, literal URL.
const DocumentsHost = "legalrag.lk"

// LangLetter maps an ISO-style language tag to the single-letter
// suffix embedded in on-disk document names (spec §6).
func LangLetter(tag string) (string, bool) {
	switch tag {
	case "en":
		return "E", true
	case "si":
		return "S", true
	case "ta":
		return "T", true
	default:
		return "", false
	}
}

// typeOrPluralized mirrors retriever.typeOrPluralized (spec §4.3,
// §6): types already ending in "s" and the mass noun "constitution"
// are used as-is; anything else gets a trailing "s". Duplicated here
// rather than imported to keep this package free of a dependency on
// the retriever, since both call sites need only this one pure
// function.
func typeOrPluralized(docType string) string {
	if docType == "" {
		return "documents"
	}
	if docType == "constitution" || strings.HasSuffix(docType, "s") {
		return docType
	}
	return docType + "s"
}

// URL synthesizes the canonical view URL for a (type, name) citation.
// Bit-exact rule (spec §6): the last 7 runes of the name stem are the
// year+language tail (with a leading "_" separator stripped); the
// remaining runes are the slash-separated document path (with "-"
// replaced by "/", and a trailing "_" separator stripped).
func URL(docType, name string) string {
	stem := []rune(name)
	const tailWidth = 7

	var pathRunes, tailRunes []rune
	if len(stem) >= tailWidth {
		pathRunes = stem[:len(stem)-tailWidth]
		tailRunes = stem[len(stem)-tailWidth:]
	} else {
		pathRunes = nil
		tailRunes = stem
	}

	path := strings.TrimSuffix(string(pathRunes), "_")
	path = strings.ReplaceAll(path, "-", "/")
	tail := strings.TrimPrefix(string(tailRunes), "_")

	return "https://" + DocumentsHost + "/view/" + typeOrPluralized(docType) + "/" + path + "/" + tail + ".pdf"
}
