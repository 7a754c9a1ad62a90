package seed

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Meta is the commit record written last in the atomicity protocol (§4.4
// step 4 "meta last"). Its Checksum binds the partition set together so a
// reader can detect a crash that renamed some partitions but not others.
type Meta struct {
	Version     int               `json:"version"`
	NodeCount   int               `json:"nodeCount"`
	EdgeCount   int               `json:"edgeCount"`
	RefCount    int               `json:"externalRefCount"`
	EffectCount int               `json:"effectCount"`
	FileCount   int               `json:"fileCount"`
	Checksum    string            `json:"checksum"`
	UpdatedAt   int64             `json:"updatedAt"`
	Extra       map[string]string `json:"extra,omitempty"`
}

const metaVersion = 1

func readMeta(dir string) (*Meta, error) {
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if os.IsNotExist(err) {
		return &Meta{Version: metaVersion}, nil
	}
	if err != nil {
		return nil, err
	}
	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func writeMetaTmp(dir string, m *Meta) (string, error) {
	m.Version = metaVersion
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	tmp := filepath.Join(dir, "meta.json.tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	return tmp, nil
}

// checksumPartitions computes the binding checksum over the size and
// modification time of every partition file meta.json records, so a torn write (some renames applied,
// some not) is detectable on the next open (§4.4 "Failure semantics").
func checksumPartitions(dir string, files []string) (string, error) {
	h := sha256.New()
	for _, f := range files {
		info, err := os.Stat(filepath.Join(dir, f))
		if os.IsNotExist(err) {
			fmt.Fprintf(h, "%s:missing\n", f)
			continue
		}
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s:%d:%d\n", f, info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyChecksum reports whether dir's current partition set matches its
// meta.json, i.e. whether the last write fully committed.
func VerifyChecksum(dir string) (bool, error) {
	m, err := readMeta(dir)
	if err != nil {
		return false, err
	}
	if m.Checksum == "" {
		return true, nil
	}
	sum, err := checksumPartitions(dir, partitionFiles)
	if err != nil {
		return false, err
	}
	return sum == m.Checksum, nil
}
