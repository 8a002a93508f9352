// Package index implements the Index Store (spec §4.1): the
// process-wide singleton that scans a data directory and materializes
// per-collection dense/sparse indices and their aligned document
// tables, grounded on
// original_source/Backend/services/langchain_retriever.py's
// load_all_documents.
package index

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"dev.legalrag.engine/internal/bm25"
	"dev.legalrag.engine/internal/document"
)

// Collection is one usable unit of retrievable content: an optional
// dense index, an optional sparse index, and the document table both
// are aligned with by position (spec §3, §4.1).
type Collection struct {
	Key       string
	Dense     *DenseIndex
	Sparse    *bm25.Index
	Documents []document.Document
}

// Usable reports whether this collection has a content list and at
// least one retrieval path (spec §4.1).
func (c *Collection) Usable() bool {
	return c != nil && len(c.Documents) > 0 && (c.Dense != nil || c.Sparse != nil)
}

// Status is the Index Store's contribution to the health surface
// (spec §6).
type Status struct {
	DataDir           string `json:"data_dir"`
	TotalCollections  int    `json:"total_collections"`
	UsableCollections int    `json:"usable_collections"`
}

type snapshot struct {
	collections map[string]*Collection
	scanned     bool // true once reload has built this snapshot
}

// Store is the process-wide Index Store singleton. Reads are
// lock-free: Status, Collections and Collection load an atomic pointer
// that reload publishes wholesale, so concurrent readers never see a
// partially rebuilt collection set (spec §9 "Singletons with safe reload").
type Store struct {
	dataDir string
	logger  *logrus.Entry
	current atomic.Pointer[snapshot]
}

// NewStore constructs a Store rooted at dataDir. It does not scan
// until Initialize or ForceReload is called.
func NewStore(dataDir string, logger *logrus.Entry) *Store {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Store{dataDir: dataDir, logger: logger.WithField("component", "index_store")}
	s.current.Store(&snapshot{collections: map[string]*Collection{}})
	return s
}

// Initialize performs the first scan if none has happened yet. A
// missing data directory is not an error: the Store starts empty and
// the system serves degraded (spec §4.1 "Failure semantics").
func (s *Store) Initialize(ctx context.Context) error {
	if s.current.Load().scanned {
		return nil
	}
	return s.reload()
}

// ForceReload re-scans the data directory and atomically publishes a
// new snapshot (spec §4.1 "Caching").
func (s *Store) ForceReload(ctx context.Context) error {
	return s.reload()
}

// Clear discards the current snapshot, returning the Store to an
// empty state without touching disk (spec §4.1 "Caching").
func (s *Store) Clear() {
	s.current.Store(&snapshot{collections: map[string]*Collection{}})
}

// Status reports collection counts for the health surface.
func (s *Store) Status() Status {
	snap := s.current.Load()
	usable := 0
	for _, c := range snap.collections {
		if c.Usable() {
			usable++
		}
	}
	return Status{
		DataDir:           s.dataDir,
		TotalCollections:  len(snap.collections),
		UsableCollections: usable,
	}
}

// Collections returns the currently published, usable collections.
// Callers borrow these references; the Store retains ownership for
// process lifetime (spec §3 "Ownership").
func (s *Store) Collections() map[string]*Collection {
	snap := s.current.Load()
	out := make(map[string]*Collection, len(snap.collections))
	for k, c := range snap.collections {
		if c.Usable() {
			out[k] = c
		}
	}
	return out
}

// Collection looks up one collection by key regardless of usability.
func (s *Store) Collection(key string) (*Collection, bool) {
	snap := s.current.Load()
	c, ok := snap.collections[key]
	return c, ok
}

type collectionBuilder struct {
	denseVectors  [][]float32
	denseDim      int
	sparseCorpus  [][]string
	dataDocs      []document.Document
	tsvDocs       []document.Document
}

func (s *Store) reload() error {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		s.logger.WithError(err).WithField("data_dir", s.dataDir).Warn("index store: data directory unavailable, starting empty")
		s.current.Store(&snapshot{collections: map[string]*Collection{}, scanned: true})
		return nil
	}

	builders := map[string]*collectionBuilder{}
	getBuilder := func(key string) *collectionBuilder {
		b, ok := builders[key]
		if !ok {
			b = &collectionBuilder{}
			builders[key] = b
		}
		return b
	}

	// Sort entries for deterministic load order and logging.
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(s.dataDir, name)
		switch {
		case strings.HasSuffix(name, ".faiss"):
			key := strings.TrimSuffix(name, ".faiss")
			s.loadDense(path, key, getBuilder(key))

		case strings.Contains(name, "_bm25."):
			key := name[:strings.Index(name, "_bm25.")]
			s.loadSparse(path, key, getBuilder(key))

		case strings.Contains(name, "_data."):
			key := name[:strings.Index(name, "_data.")]
			s.loadData(path, key, getBuilder(key))

		case strings.HasSuffix(name, ".tsv.gz"):
			key := strings.TrimSuffix(name, ".tsv.gz")
			s.loadTSV(path, key, getBuilder(key))

		case strings.HasSuffix(name, ".tsv"):
			key := strings.TrimSuffix(name, ".tsv")
			s.loadTSV(path, key, getBuilder(key))
		}
	}

	collections := make(map[string]*Collection, len(builders))
	for key, b := range builders {
		c := &Collection{Key: key}
		if len(b.denseVectors) > 0 {
			c.Dense = &DenseIndex{Vectors: b.denseVectors, Dimension: b.denseDim}
		}
		if len(b.sparseCorpus) > 0 {
			c.Sparse = bm25.NewIndex(b.sparseCorpus, bm25.DefaultParameters())
		}
		switch {
		case len(b.dataDocs) > 0:
			c.Documents = b.dataDocs
		case len(b.tsvDocs) > 0:
			c.Documents = b.tsvDocs
		}
		collections[key] = c
		s.logger.WithFields(logrus.Fields{
			"collection": key,
			"usable":     c.Usable(),
			"documents":  len(c.Documents),
		}).Info("index store: collection loaded")
	}

	s.current.Store(&snapshot{collections: collections, scanned: true})
	return nil
}

// denseManifest is the sidecar JSON shape a `.faiss`-suffixed file is
// expected to hold (spec §4.2 "Dense index representation" — no
// pure-Go FAISS binary reader exists in the example pack).
type denseManifest struct {
	Dimension int         `json:"dimension"`
	Vectors   [][]float32 `json:"vectors"`
}

func (s *Store) loadDense(path, key string, b *collectionBuilder) {
	raw, err := os.ReadFile(path)
	if err != nil {
		s.logFileFailure(key, "dense", path, err)
		return
	}
	var manifest denseManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		s.logFileFailure(key, "dense", path, err)
		return
	}
	b.denseVectors = manifest.Vectors
	b.denseDim = manifest.Dimension
}

func (s *Store) loadSparse(path, key string, b *collectionBuilder) {
	raw, err := os.ReadFile(path)
	if err != nil {
		s.logFileFailure(key, "sparse", path, err)
		return
	}
	var corpus [][]string
	if err := json.Unmarshal(raw, &corpus); err != nil {
		s.logFileFailure(key, "sparse", path, err)
		return
	}
	b.sparseCorpus = corpus
}

// dataRecord mirrors the precomputed document shape a `*_data.<blob>`
// sidecar carries (spec §4.1).
type dataRecord struct {
	Content  string            `json:"content"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Metadata map[string]string `json:"metadata"`
}

func (s *Store) loadData(path, key string, b *collectionBuilder) {
	raw, err := os.ReadFile(path)
	if err != nil {
		s.logFileFailure(key, "data", path, err)
		return
	}
	var records []dataRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		s.logFileFailure(key, "data", path, err)
		return
	}
	docs := make([]document.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, document.Document{
			Content:       rec.Content,
			Name:          rec.Name,
			Type:          rec.Type,
			CollectionKey: key,
			Metadata:      rec.Metadata,
		})
	}
	b.dataDocs = docs
}

func (s *Store) loadTSV(path, key string, b *collectionBuilder) {
	rows, count, err := readTSV(path)
	if err != nil {
		s.logFileFailure(key, "tsv", path, err)
		return
	}
	docs := make([]document.Document, 0, len(rows))
	for i, row := range rows {
		name := row.column("name")
		if name == "" {
			name = nameFallback(i)
		}
		meta := make(map[string]string, len(row.values))
		for k, v := range row.values {
			if k == "content" {
				continue
			}
			meta[k] = v
		}
		docs = append(docs, document.Document{
			Content:       row.column("content"),
			Name:          name,
			Type:          row.column("type"),
			CollectionKey: key,
			Metadata:      meta,
		})
	}
	b.tsvDocs = docs
	s.logger.WithFields(logrus.Fields{"collection": key, "rows": count}).Info("index store: tsv ingested")
}

func nameFallback(i int) string {
	return "doc_" + strconv.Itoa(i)
}

func (s *Store) logFileFailure(collection, kind, path string, err error) {
	s.logger.WithError(err).WithFields(logrus.Fields{
		"collection": collection,
		"kind":       kind,
		"path":       path,
	}).Warn("index store: failed to load file, skipping")
}
