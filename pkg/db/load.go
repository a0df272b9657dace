// --------------------------------------------------------------------------------
// Author: Thomas F McGeehan V
//
// This file is part of a software project developed by Thomas F McGeehan V.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
// For more information about the MIT License, please visit:
// https://opensource.org/licenses/MIT
//
// Acknowledgment appreciated but not required.
// --------------------------------------------------------------------------------

package db

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"gonum.org/v1/gonum/mat"
)

// rowValues is the subset of pgx.Rows needed to scan query results.
type rowValues interface {
	Next() bool
	Values() ([]interface{}, error)
	Err() error
}

// LoadMatrix runs query and scans every row into a dense feature matrix.
// All selected columns must be numeric and every row must have the same
// width.
func LoadMatrix(ctx context.Context, pool *pgxpool.Pool, query string) (*mat.Dense, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %v", err)
	}
	defer rows.Close()
	return scanMatrix(rows)
}

// scanMatrix collects all rows into a dense matrix, rejecting ragged rows and
// non-numeric columns.
func scanMatrix(rows rowValues) (*mat.Dense, error) {
	var data []float64
	cols := 0
	n := 0
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("row scan failed: %v", err)
		}
		if cols == 0 {
			cols = len(values)
		} else if len(values) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", n, len(values), cols)
		}
		for i, v := range values {
			f, err := toFloat(v)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %v", n, i, err)
			}
			data = append(data, f)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %v", err)
	}
	if n == 0 || cols == 0 {
		return nil, fmt.Errorf("query returned no data")
	}
	return mat.NewDense(n, cols, data), nil
}

// LoadCSVMatrix parses a headerless numeric CSV file into a dense feature
// matrix. The csv reader rejects ragged rows.
func LoadCSVMatrix(path string) (*mat.Dense, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open CSV file: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read CSV file: %v", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file %s is empty", path)
	}

	cols := len(records[0])
	data := make([]float64, 0, len(records)*cols)
	for i, record := range records {
		for j, field := range record {
			f, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %v", i, j, err)
			}
			data = append(data, f)
		}
	}
	return mat.NewDense(len(records), cols, data), nil
}

func toFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int16:
		return float64(t), nil
	default:
		return 0, fmt.Errorf("non-numeric value of type %T", v)
	}
}
