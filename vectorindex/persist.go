package vectorindex

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/x448/float16"

	"github.com/amancerp/hybridsearch/internal/errkind"
)

const formatVersion = 1

// metadata is the on-disk schema of the sidecar "<name>.json" file.
type metadata struct {
	Dimension     int    `json:"dimension"`
	Count         int    `json:"count"`
	EmbedderID    string `json:"embedder_id"`
	Distance      string `json:"distance"`
	FormatVersion int    `json:"format_version"`
}

// Save writes the index as "<path>.npz" and "<path>.json". Each file is
// written to a temporary name in the same directory and renamed into place
// only after its full write succeeds, so neither file is left half-written.
// The archive is renamed into place before the metadata file is written, so
// a failure while writing the metadata leaves the new archive beside the
// previous metadata file.
func (idx *Index) Save(path string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	lockPath := path + ".lock"
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return &IOError{Op: "save", Err: err}
	}
	defer fl.Unlock()

	npzPath := path + ".npz"
	jsonPath := path + ".json"

	if err := writeAtomic(npzPath, idx.encodeNPZ()); err != nil {
		return &IOError{Op: "save", Err: err}
	}

	meta := metadata{
		Dimension:     idx.dimension,
		Count:         len(idx.docIDs),
		EmbedderID:    idx.embedderID,
		Distance:      idx.distance.String(),
		FormatVersion: formatVersion,
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return &IOError{Op: "save", Err: err}
	}
	if err := writeAtomic(jsonPath, metaBytes); err != nil {
		return &IOError{Op: "save", Err: err}
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// encodeNPZ packs vectors and doc_ids into a zip archive containing
// "vectors.f16" (raw little-endian row-major uint16 words) and
// "doc_ids.json" (an ordered JSON array of strings).
func (idx *Index) encodeNPZ() []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	vecW, _ := zw.Create("vectors.f16")
	rowBuf := make([]byte, len(idx.rows)*2)
	for i, h := range idx.rows {
		binary.LittleEndian.PutUint16(rowBuf[i*2:], uint16(h))
	}
	_, _ = vecW.Write(rowBuf)

	idsW, _ := zw.Create("doc_ids.json")
	idsBytes, _ := json.Marshal(idx.docIDs)
	_, _ = idsW.Write(idsBytes)

	_ = zw.Close()
	return buf.Bytes()
}

// Load reads an index previously written by Save. If expectedEmbedderID is
// non-empty, it is compared against the stored embedder_id and an
// EmbedderMismatchError is returned on disagreement.
func Load(path string, expectedEmbedderID string) (*Index, error) {
	npzPath := path + ".npz"
	jsonPath := path + ".json"

	metaBytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, &MissingFileError{Path: jsonPath}
	}
	var meta metadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, &IOError{Op: "load", Err: err}
	}
	if meta.FormatVersion != formatVersion {
		return nil, &VersionMismatchError{Got: meta.FormatVersion, Want: formatVersion}
	}
	if expectedEmbedderID != "" && expectedEmbedderID != meta.EmbedderID {
		return nil, &EmbedderMismatchError{Got: meta.EmbedderID, Want: expectedEmbedderID}
	}

	npzBytes, err := os.ReadFile(npzPath)
	if err != nil {
		return nil, &MissingFileError{Path: npzPath}
	}

	rows, docIDs, err := decodeNPZ(npzBytes, meta.Dimension)
	if err != nil {
		return nil, err
	}
	if len(docIDs) != meta.Count || len(rows) != meta.Count*meta.Dimension {
		return nil, &ShapeMismatchError{Msg: fmt.Sprintf("metadata count %d disagrees with stored rows", meta.Count)}
	}

	distance := Cosine
	if meta.Distance == "dot" {
		distance = Dot
	}

	rowOfDocID := make(map[string]int, len(docIDs))
	for i, id := range docIDs {
		rowOfDocID[id] = i
	}

	return &Index{
		dimension:  meta.Dimension,
		distance:   distance,
		embedderID: meta.EmbedderID,
		rows:       rows,
		docIDs:     docIDs,
		rowOfDocID: rowOfDocID,
	}, nil
}

func decodeNPZ(data []byte, dimension int) ([]float16.Float16, []string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, &IOError{Op: "load", Err: err}
	}

	var rowBuf []byte
	var idsBytes []byte
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, nil, &IOError{Op: "load", Err: err}
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, nil, &IOError{Op: "load", Err: err}
		}
		switch f.Name {
		case "vectors.f16":
			rowBuf = content
		case "doc_ids.json":
			idsBytes = content
		}
	}
	if rowBuf == nil || idsBytes == nil {
		return nil, nil, &ShapeMismatchError{Msg: "npz archive missing expected members"}
	}

	var docIDs []string
	if err := json.Unmarshal(idsBytes, &docIDs); err != nil {
		return nil, nil, &IOError{Op: "load", Err: err}
	}

	if len(rowBuf)%2 != 0 {
		return nil, nil, &ShapeMismatchError{Msg: "vectors.f16 length is not a multiple of 2"}
	}
	rows := make([]float16.Float16, len(rowBuf)/2)
	for i := range rows {
		rows[i] = float16.Float16(binary.LittleEndian.Uint16(rowBuf[i*2:]))
	}
	if dimension > 0 && len(rows)%dimension != 0 {
		return nil, nil, &ShapeMismatchError{Msg: fmt.Sprintf("vectors.f16 holds %d values, not a multiple of dimension %d", len(rows), dimension)}
	}
	_ = dimension
	return rows, docIDs, nil
}

// MissingFileError reports an absent persistence file.
type MissingFileError struct{ Path string }

func (e *MissingFileError) Error() string { return fmt.Sprintf("vectorindex: missing file %q", e.Path) }
func (e *MissingFileError) Unwrap() error { return errkind.ErrIO }

// VersionMismatchError reports an unknown format_version.
type VersionMismatchError struct{ Got, Want int }

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("vectorindex: format_version %d unsupported, want %d", e.Got, e.Want)
}
func (e *VersionMismatchError) Unwrap() error { return errkind.ErrCompatibility }

// ShapeMismatchError reports an array shape disagreeing with metadata.
type ShapeMismatchError struct{ Msg string }

func (e *ShapeMismatchError) Error() string { return "vectorindex: shape mismatch: " + e.Msg }
func (e *ShapeMismatchError) Unwrap() error { return errkind.ErrIO }

// EmbedderMismatchError reports a caller-requested embedder_id check
// failing against the stored metadata.
type EmbedderMismatchError struct{ Got, Want string }

func (e *EmbedderMismatchError) Error() string {
	return fmt.Sprintf("vectorindex: embedder_id mismatch: stored %q, want %q", e.Got, e.Want)
}
func (e *EmbedderMismatchError) Unwrap() error { return errkind.ErrCompatibility }

// IOError wraps an underlying I/O failure during persistence. Unwrap
// exposes both the errkind.ErrIO sentinel and the underlying cause.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string     { return fmt.Sprintf("vectorindex: %s: %v", e.Op, e.Err) }
func (e *IOError) Unwrap() []error   { return []error{errkind.ErrIO, e.Err} }
