package seed

import (
	"os"
	"path/filepath"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/anthropics/devac/internal/devac/devacerr"
	"github.com/anthropics/devac/internal/devac/model"
)

// partitionFiles lists every Parquet partition under a seed (base or
// branch) directory, in the rename order step 4 of the atomicity protocol
// requires: data partitions first, file_hashes last among the data files,
// meta.json committed after all of them (handled by the caller).
var partitionFiles = []string{
	"nodes.parquet",
	"edges.parquet",
	"external_refs.parquet",
	"effects.parquet",
	"file_hashes.parquet",
}

// fileHashRow is the file_hashes.parquet row shape: one row per source file
// tracked by a seed, used to detect staleness without re-reading every node.
type fileHashRow struct {
	FilePath string `parquet:"name=file_path, type=BYTE_ARRAY, convertedtype=UTF8"`
	Hash     string `parquet:"name=hash, type=BYTE_ARRAY, convertedtype=UTF8"`
	Branch   string `parquet:"name=branch, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// readParquet loads every row of a partition file and returns them as a slice.
// A missing file is treated as empty, not an error (§4.5 "missing
// partition as empty").
func readParquet[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, &devacerr.StorageError{Kind: devacerr.StorageCorruptPartition, Seed: path, Detail: "opening partition for read", Err: err}
	}
	defer fr.Close()

	var zero T
	pr, err := reader.NewParquetReader(fr, &zero, 4)
	if err != nil {
		return nil, &devacerr.StorageError{Kind: devacerr.StorageCorruptPartition, Seed: path, Detail: "reading partition schema", Err: err}
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	rows := make([]T, num)
	if num > 0 {
		if err := pr.Read(&rows); err != nil {
			return nil, &devacerr.StorageError{Kind: devacerr.StorageCorruptPartition, Seed: path, Detail: "reading partition rows", Err: err}
		}
	}
	return rows, nil
}

// writeParquetTmp writes rows to path+".tmp", uncompressed (§9 "pinned to
// uncompressed for the idempotent-re-parse property" — see SPEC_FULL.md).
// It returns the temp file's path for the caller to rename in commit order.
func writeParquetTmp[T any](path string, rows []T) (string, error) {
	tmp := path + ".tmp"
	fw, err := local.NewLocalFileWriter(tmp)
	if err != nil {
		return "", &devacerr.StorageError{Kind: devacerr.StorageAtomicRenameFail, Seed: path, Detail: "creating temp partition", Err: err}
	}

	var zero T
	pw, err := writer.NewParquetWriter(fw, &zero, 4)
	if err != nil {
		fw.Close()
		return "", &devacerr.StorageError{Kind: devacerr.StorageAtomicRenameFail, Seed: path, Detail: "creating parquet writer", Err: err}
	}
	pw.CompressionType = parquet.CompressionCodec_UNCOMPRESSED

	for i := range rows {
		if err := pw.Write(rows[i]); err != nil {
			pw.WriteStop()
			fw.Close()
			return "", &devacerr.StorageError{Kind: devacerr.StorageAtomicRenameFail, Seed: path, Detail: "writing partition row", Err: err}
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return "", &devacerr.StorageError{Kind: devacerr.StorageAtomicRenameFail, Seed: path, Detail: "flushing partition", Err: err}
	}
	if err := fw.Close(); err != nil {
		return "", &devacerr.StorageError{Kind: devacerr.StorageAtomicRenameFail, Seed: path, Detail: "closing temp partition", Err: err}
	}
	return tmp, nil
}

// commitDataRenames renames every data-partition tmp file over its target
// in the fixed order (§4.4 step 4a) — everything except meta.json, which is
// committed separately once the checksum over these renamed files has been
// computed (see commit below).
func commitDataRenames(dir string, tmpByTarget map[string]string) error {
	for _, name := range partitionFiles {
		tmp, ok := tmpByTarget[name]
		if !ok {
			continue
		}
		target := filepath.Join(dir, name)
		if err := os.Rename(tmp, target); err != nil {
			return &devacerr.StorageError{Kind: devacerr.StorageAtomicRenameFail, Seed: dir, Detail: "renaming " + name, Err: err}
		}
	}
	return nil
}

// commitMetaRename renames meta.json.tmp over meta.json (§4.4 step 4b "meta
// last") and fsyncs the directory (step 5) so the rename set is the durable
// commit point.
func commitMetaRename(dir, metaTmp string) error {
	if err := os.Rename(metaTmp, filepath.Join(dir, "meta.json")); err != nil {
		return &devacerr.StorageError{Kind: devacerr.StorageAtomicRenameFail, Seed: dir, Detail: "renaming meta.json", Err: err}
	}

	df, err := os.Open(dir)
	if err != nil {
		return &devacerr.StorageError{Kind: devacerr.StorageAtomicRenameFail, Seed: dir, Detail: "opening seed directory for fsync", Err: err}
	}
	defer df.Close()
	if err := df.Sync(); err != nil {
		return &devacerr.StorageError{Kind: devacerr.StorageAtomicRenameFail, Seed: dir, Detail: "fsyncing seed directory", Err: err}
	}
	return nil
}

// cleanupOrphanedTmp removes *.tmp files left behind by a crash before step
// 4 committed (§4.4 "Temp files left behind by a crash are collected on the
// next write").
func cleanupOrphanedTmp(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			os.Remove(filepath.Join(dir, e.Name()))
		}
	}
}

// snapshot is the full in-memory contents of one seed partition set,
// loaded once per write under the lock and mutated in place.
type snapshot struct {
	nodes      []model.Node
	edges      []model.Edge
	refs       []model.ExternalRef
	effects    []model.Effect
	fileHashes []fileHashRow
}

func loadSnapshot(dir string) (*snapshot, error) {
	nodes, err := readParquet[model.Node](filepath.Join(dir, "nodes.parquet"))
	if err != nil {
		return nil, err
	}
	edges, err := readParquet[model.Edge](filepath.Join(dir, "edges.parquet"))
	if err != nil {
		return nil, err
	}
	refs, err := readParquet[model.ExternalRef](filepath.Join(dir, "external_refs.parquet"))
	if err != nil {
		return nil, err
	}
	effects, err := readParquet[model.Effect](filepath.Join(dir, "effects.parquet"))
	if err != nil {
		return nil, err
	}
	fileHashes, err := readParquet[fileHashRow](filepath.Join(dir, "file_hashes.parquet"))
	if err != nil {
		return nil, err
	}
	return &snapshot{nodes: nodes, edges: edges, refs: refs, effects: effects, fileHashes: fileHashes}, nil
}

// commit writes every partition in snapshot to dir using the §4.4
// atomicity protocol steps 3-5 (the lock itself is steps 1/6, held by the
// caller) and updates meta.json last.
func (s *snapshot) commit(dir string) error {
	tmpByTarget := make(map[string]string, len(partitionFiles)+1)

	writes := []struct {
		name string
		fn   func() (string, error)
	}{
		{"nodes.parquet", func() (string, error) { return writeParquetTmp(filepath.Join(dir, "nodes.parquet"), s.nodes) }},
		{"edges.parquet", func() (string, error) { return writeParquetTmp(filepath.Join(dir, "edges.parquet"), s.edges) }},
		{"external_refs.parquet", func() (string, error) { return writeParquetTmp(filepath.Join(dir, "external_refs.parquet"), s.refs) }},
		{"effects.parquet", func() (string, error) { return writeParquetTmp(filepath.Join(dir, "effects.parquet"), s.effects) }},
		{"file_hashes.parquet", func() (string, error) { return writeParquetTmp(filepath.Join(dir, "file_hashes.parquet"), s.fileHashes) }},
	}

	for _, w := range writes {
		tmp, err := w.fn()
		if err != nil {
			return err
		}
		tmpByTarget[w.name] = tmp
	}

	// Data partitions commit first so the checksum below binds meta.json to
	// the partition set that is actually on disk once this write lands, not
	// the stale set it is replacing.
	if err := commitDataRenames(dir, tmpByTarget); err != nil {
		return err
	}

	sum, err := checksumPartitions(dir, partitionFiles)
	if err != nil {
		return err
	}
	meta := &Meta{
		NodeCount:   len(s.nodes),
		EdgeCount:   len(s.edges),
		RefCount:    len(s.refs),
		EffectCount: len(s.effects),
		FileCount:   len(s.fileHashes),
		Checksum:    sum,
		UpdatedAt:   time.Now().Unix(),
	}
	metaTmp, err := writeMetaTmp(dir, meta)
	if err != nil {
		return err
	}

	return commitMetaRename(dir, metaTmp)
}
