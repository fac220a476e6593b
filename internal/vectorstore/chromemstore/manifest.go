package chromemstore

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// spaceManifest records the vector-space binding of a collection: chromem
// itself stores only raw embeddings, but a collection is bound to exactly
// one vector space for its lifetime and that binding must survive restarts.
type spaceManifest struct {
	VectorName string `json:"vector_name"`
	VectorSize uint64 `json:"vector_size"`
}

func (s *Store) manifestPath(collection string) string {
	// Collection names are caller-supplied; encode them so they are always
	// safe as a file name.
	encoded := base64.RawURLEncoding.EncodeToString([]byte(collection))
	return filepath.Join(s.path, encoded+".space.json")
}

// writeManifest persists the vector-space binding. The first writer wins;
// later (racing) creations leave the existing binding untouched.
func (s *Store) writeManifest(collection string, m spaceManifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.manifestPath(collection)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("chromem: failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("chromem: failed to write manifest for %q: %w", collection, err)
	}
	return nil
}

func (s *Store) readManifest(collection string) (spaceManifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.manifestPath(collection))
	if err != nil {
		return spaceManifest{}, fmt.Errorf("chromem: failed to read manifest for %q: %w", collection, err)
	}

	var m spaceManifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return spaceManifest{}, fmt.Errorf("chromem: failed to decode manifest for %q: %w", collection, err)
	}
	return m, nil
}

// checkVectorSpace rejects reads and writes that do not match the vector
// space a collection was created with. A collection is bound to exactly one
// vector space for its lifetime; the Qdrant backend enforces this through
// named vectors and the embedded backend must not be laxer.
func (s *Store) checkVectorSpace(collection, vectorName string, vectorLen int) error {
	manifest, err := s.readManifest(collection)
	if err != nil {
		return err
	}
	if vectorName != manifest.VectorName {
		return fmt.Errorf("chromem: collection %q is bound to vector space %q, got %q",
			collection, manifest.VectorName, vectorName)
	}
	if uint64(vectorLen) != manifest.VectorSize {
		return fmt.Errorf("chromem: collection %q expects vectors of size %d, got %d",
			collection, manifest.VectorSize, vectorLen)
	}
	return nil
}

// stringifyScalar renders a scalar payload value in the canonical string
// form shared by store-time flattening and query-time filters.
func stringifyScalar(v any) (string, bool) {
	switch value := v.(type) {
	case string:
		return value, true
	case bool:
		return strconv.FormatBool(value), true
	case int64:
		return strconv.FormatInt(value, 10), true
	case int:
		return strconv.Itoa(value), true
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), true
	default:
		return "", false
	}
}
