// Package store persists IPConfig records as flat single-row CSV files.
//
// The on-disk format is kept byte-compatible with the files the earlier
// Windows-era tooling wrote: one header row followed by exactly one data row.
// Absence of a slot's file signals "record does not exist".
package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"

	"dr-ipconfig/internal/port"
	"dr-ipconfig/internal/types"
)

// Record slot names. The file backing a slot is "<slot>.csv" in the state directory.
const (
	SlotCurrent    = "ipconfig"
	SlotPrevious   = "previous_ipconfig"
	SlotDROverride = "dr_ipconfig"
)

var header = []string{"IPAddress", "PrefixLength", "IPv4DefaultGateway", "PrimaryDNSServer", "SecondaryDNSServer"}

// CSVStore is an adapter that implements the RecordStore port on top of the FileManager port.
type CSVStore struct {
	dir     string
	fileMgr port.FileManager
}

// Ensure CSVStore implements the RecordStore port
var _ port.RecordStore = (*CSVStore)(nil)

// NewCSVStore creates a record store rooted at the given state directory.
func NewCSVStore(dir string, fileMgr port.FileManager) *CSVStore {
	return &CSVStore{dir: dir, fileMgr: fileMgr}
}

// Path returns the backing file path for a slot.
func (s *CSVStore) Path(slot string) string {
	return filepath.Join(s.dir, slot+".csv")
}

// Load reads the record in the named slot. The bool reports slot existence;
// a present but malformed file is an error, never treated as absence.
func (s *CSVStore) Load(slot string) (*types.IPConfig, bool, error) {
	path := s.Path(slot)
	if !s.fileMgr.FileExists(path) {
		return nil, false, nil
	}

	data, err := s.fileMgr.ReadFile(path)
	if err != nil {
		return nil, false, err
	}

	cfg, err := parseRecord(data)
	if err != nil {
		return nil, false, fmt.Errorf("malformed record %s: %w", path, err)
	}
	return cfg, true, nil
}

// Save writes the record into the named slot. The write goes to a temporary
// file first and is renamed into place, so a crash mid-write never leaves a
// half-written record behind.
func (s *CSVStore) Save(slot string, cfg *types.IPConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid record for slot %s: %w", slot, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to encode record header: %w", err)
	}
	row := []string{cfg.Address, strconv.Itoa(cfg.PrefixLength), cfg.Gateway, cfg.PrimaryDNS, cfg.SecondaryDNS}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to encode record row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	path := s.Path(slot)
	tmp := path + ".tmp"
	if err := s.fileMgr.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return err
	}
	return s.fileMgr.Rename(tmp, path)
}

func parseRecord(data []byte) (*types.IPConfig, error) {
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) != 2 {
		return nil, fmt.Errorf("expected header and one data row, got %d rows", len(rows))
	}
	if len(rows[0]) != len(header) {
		return nil, fmt.Errorf("expected %d header fields, got %d", len(header), len(rows[0]))
	}
	for i, name := range header {
		if rows[0][i] != name {
			return nil, fmt.Errorf("unexpected header field %q, want %q", rows[0][i], name)
		}
	}

	row := rows[1]
	prefix, err := strconv.Atoi(row[1])
	if err != nil {
		return nil, fmt.Errorf("invalid prefix length %q: %w", row[1], err)
	}

	cfg := &types.IPConfig{
		Address:      row[0],
		PrefixLength: prefix,
		Gateway:      row[2],
		PrimaryDNS:   row[3],
		SecondaryDNS: row[4],
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
