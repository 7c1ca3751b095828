// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package dataset loads uploaded tabular files (CSV, XLSX) into immutable
// in-memory tables with inferred column types and summary statistics.
package dataset

import (
	"fmt"
	"strconv"
)

// ColumnType is the inferred type of a column.
type ColumnType string

const (
	ColumnNumeric     ColumnType = "numeric"
	ColumnDatetime    ColumnType = "datetime"
	ColumnCategorical ColumnType = "categorical"
	ColumnText        ColumnType = "text"
)

// NumericStats are summary statistics for a numeric column.
type NumericStats struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
}

// ValueCount is one categorical value with its occurrence count.
type ValueCount struct {
	Value string
	Count int
}

// Column describes one column of a Dataset.
type Column struct {
	Name     string
	Type     ColumnType
	Distinct int

	// Samples holds up to a handful of example raw values for LLM context.
	Samples []string

	// Stats is populated for numeric columns only.
	Stats *NumericStats

	// TopValues is populated for categorical columns (most frequent first).
	TopValues []ValueCount
}

// Dataset is an immutable in-memory table. It is created once per upload
// and never mutated; renderers read from it concurrently without locking.
type Dataset struct {
	Name     string
	Columns  []Column
	RowCount int

	rows  [][]string
	index map[string]int
}

// FormatError signals an unparseable, empty, or column-less upload.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid data file: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid data file: %s", e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ColumnNames returns the column names in file order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return &d.Columns[i], true
}

// HasColumn reports whether the dataset contains the named column.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Values returns the raw cell values of one column, in row order.
func (d *Dataset) Values(name string) []string {
	i, ok := d.index[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(d.rows))
	for _, row := range d.rows {
		if i < len(row) {
			out = append(out, row[i])
		} else {
			out = append(out, "")
		}
	}
	return out
}

// Floats returns the parseable numeric values of one column. Blank and
// unparseable cells are skipped.
func (d *Dataset) Floats(name string) []float64 {
	var out []float64
	for _, v := range d.Values(name) {
		f, err := strconv.ParseFloat(trimNumeric(v), 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Rows returns the raw data rows. The slice is shared; callers must not
// modify it.
func (d *Dataset) Rows() [][]string {
	return d.rows
}
