package retriever

import (
	"context"
	"strconv"
	"strings"
)

// typeOrPluralized implements the shared pluralization rule used by
// both the legacy retrieve_doc filename and the citation URL
// synthesizer (spec §4.3, §6): types already ending in "s" (acts,
// bills, gazettes) and the mass noun "constitution" are used as-is;
// anything else gets a trailing "s".
func typeOrPluralized(docType string) string {
	if docType == "" {
		return "documents"
	}
	if docType == "constitution" || strings.HasSuffix(docType, "s") {
		return docType
	}
	return docType + "s"
}

// RetrieveDoc is the legacy compatibility surface (spec §4.3): it
// returns parallel content/filename arrays in result order, grounded
// on original_source/Backend/services/langchain_retriever.py's
// retrieve_doc.
func (r *Retriever) RetrieveDoc(ctx context.Context, query string, k int) ([]string, []string, error) {
	hits, err := r.Retrieve(ctx, query, k)
	if err != nil {
		return nil, nil, err
	}
	contents := make([]string, len(hits))
	filenames := make([]string, len(hits))
	for i, h := range hits {
		contents[i] = h.Document.Content
		name := h.Document.Name
		if name == "" {
			name = "doc_" + strconv.Itoa(i)
		}
		filenames[i] = typeOrPluralized(h.Document.Type) + "/" + name
	}
	return contents, filenames, nil
}
