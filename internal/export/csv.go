package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"bordtennis-ranking/internal/domain"

	"github.com/cockroachdb/errors"
)

// ColumnPolicy decides what happens when a record's keys differ from the
// header taken from the first record.
type ColumnPolicy int

const (
	// MissingColumnEmpty writes "" for missing keys and drops unknown ones.
	MissingColumnEmpty ColumnPolicy = iota
	// MissingColumnFail rejects any record whose keys differ from the header.
	MissingColumnFail
)

func PolicyFor(strict bool) ColumnPolicy {
	if strict {
		return MissingColumnFail
	}
	return MissingColumnEmpty
}

// WriteFile overwrites path with the records as CSV. Nothing is created when
// there is nothing to write.
func WriteFile(path string, records domain.ResultSet, policy ColumnPolicy) (err error) {
	if len(records) == 0 {
		return domain.ErrEmptyResult
	}
	if err := checkColumns(records, policy); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	return Write(f, records, policy)
}

// Write emits a header row built from the first record's keys followed by
// one row per record, in header order.
func Write(w io.Writer, records domain.ResultSet, policy ColumnPolicy) error {
	if len(records) == 0 {
		return domain.ErrEmptyResult
	}
	if err := checkColumns(records, policy); err != nil {
		return err
	}

	header := records[0].Keys()
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(header))
	for _, rec := range records {
		for i, col := range header {
			v, _ := rec.Get(col)
			row[i] = v
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func checkColumns(records domain.ResultSet, policy ColumnPolicy) error {
	if policy != MissingColumnFail {
		return nil
	}

	header := records[0].Keys()
	for i, rec := range records[1:] {
		if rec.Len() != len(header) {
			return errors.Wrapf(domain.ErrMissingColumn, "record %d has %d columns, header has %d", i+1, rec.Len(), len(header))
		}
		for _, col := range header {
			if _, ok := rec.Get(col); !ok {
				return errors.Wrapf(domain.ErrMissingColumn, "record %d has no %q column", i+1, col)
			}
		}
	}
	return nil
}

// Read parses CSV written by Write, keying every row by the header row.
func Read(r io.Reader) (domain.ResultSet, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrEmptyResult
	}

	header := rows[0]
	records := make(domain.ResultSet, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, domain.RecordOf(header, row))
	}
	return records, nil
}
