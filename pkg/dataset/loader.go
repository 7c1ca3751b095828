// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// No hard size limit is enforced here; extremely large uploads are an
// operational limit of the host, not a handled failure mode.

// Load parses an uploaded file into a Dataset. The format is chosen by
// file extension: .xlsx/.xlsm via excelize, everything else as CSV with
// delimiter inference.
func Load(name string, r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &FormatError{Reason: "unreadable upload", Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &FormatError{Reason: "file is empty"}
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return loadExcel(name, raw)
	default:
		return loadCSV(name, raw)
	}
}

// loadCSV parses CSV bytes with the first row as header.
func loadCSV(name string, raw []byte) (*Dataset, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = detectDelimiter(raw)
	reader.TrimLeadingSpace = true

	var headers []string
	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &FormatError{Reason: "malformed CSV", Err: err}
		}
		if headers == nil {
			headers = record
			continue
		}
		rows = append(rows, record)
	}

	return build(datasetName(name), headers, rows)
}

// loadExcel parses the first sheet of an XLSX workbook.
func loadExcel(name string, raw []byte) (*Dataset, error) {
	file, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &FormatError{Reason: "cannot open workbook", Err: err}
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, &FormatError{Reason: "workbook has no sheets"}
	}

	records, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("cannot read sheet %q", sheets[0]), Err: err}
	}
	if len(records) == 0 {
		return nil, &FormatError{Reason: "sheet is empty"}
	}

	headers := records[0]
	rows := records[1:]
	// excelize drops trailing empty cells; pad rows to header width.
	for i, row := range rows {
		for len(row) < len(headers) {
			row = append(row, "")
		}
		rows[i] = row
	}

	return build(datasetName(name), headers, rows)
}

// build validates the parsed table, infers column types, and computes
// summary statistics.
func build(name string, headers []string, rows [][]string) (*Dataset, error) {
	headers = cleanHeaders(headers)
	if len(headers) == 0 {
		return nil, &FormatError{Reason: "no parsable columns"}
	}
	if len(rows) == 0 {
		return nil, &FormatError{Reason: "no data rows"}
	}

	ds := &Dataset{
		Name:     name,
		RowCount: len(rows),
		rows:     rows,
		index:    make(map[string]int, len(headers)),
	}
	for i, h := range headers {
		ds.index[h] = i
		ds.Columns = append(ds.Columns, Column{Name: h})
	}
	for i := range ds.Columns {
		inferColumn(ds, i)
	}
	return ds, nil
}

// detectDelimiter picks the candidate delimiter that splits the first
// line into the most fields. Comma wins ties.
func detectDelimiter(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}

	best := ','
	bestCount := bytes.Count(line, []byte{','})
	for _, cand := range []byte{';', '\t', '|'} {
		if n := bytes.Count(line, []byte{cand}); n > bestCount {
			best = rune(cand)
			bestCount = n
		}
	}
	return best
}

// cleanHeaders trims whitespace and fills in names for blank header cells.
func cleanHeaders(headers []string) []string {
	out := make([]string, 0, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		out = append(out, h)
	}
	// A header row that is entirely blank means there is no header at all.
	allGenerated := true
	for i, h := range out {
		if h != fmt.Sprintf("column_%d", i+1) {
			allGenerated = false
			break
		}
	}
	if allGenerated && len(headers) > 0 {
		allBlank := true
		for _, h := range headers {
			if strings.TrimSpace(h) != "" {
				allBlank = false
				break
			}
		}
		if allBlank {
			return nil
		}
	}
	return out
}

func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
