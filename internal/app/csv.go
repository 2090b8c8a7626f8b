package app

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"amsterdam_guide/internal/domain"
)

// decodeCSV reads a headered CSV into raw rows keyed by normalized header.
// The first structural error (ragged row, bare quote, ...) fails the whole
// upload; blank lines are skipped by the reader.
func decodeCSV(r io.Reader) ([]domain.RawRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, domain.ErrNoRows
	}
	if err != nil {
		return nil, wrapParseErr(err)
	}
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = NormalizeHeader(h)
	}

	var rows []domain.RawRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapParseErr(err)
		}
		row := make(domain.RawRow, len(keys))
		for i, v := range rec {
			if i < len(keys) {
				row[keys[i]] = v
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, domain.ErrNoRows
	}
	return rows, nil
}

func wrapParseErr(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w at line %d: %v", domain.ErrBadCSV, pe.Line, pe.Err)
	}
	return fmt.Errorf("%w: %v", domain.ErrBadCSV, err)
}
