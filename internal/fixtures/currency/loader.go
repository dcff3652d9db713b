// Package currency holds the seed currencies created on first start.
package currency

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/amirasaad/econbot/pkg/parser"
	"github.com/shopspring/decimal"
)

//go:embed seed.csv
var seedCSV string

const columns = 4

// LoadCurrencySpecsCSV loads seed currency specs from a CSV file or, if path
// is empty, from the embedded seed list. Denominations are written as
// `name:value` pairs separated by semicolons.
func LoadCurrencySpecsCSV(path string) ([]currency.Spec, error) {
	var r io.Reader

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		r = f
	} else {
		r = strings.NewReader(seedCSV)
	}

	return parseCurrencySpecsCSV(r)
}

func parseCurrencySpecsCSV(r io.Reader) ([]currency.Spec, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) < columns {
		return nil, errors.New("invalid CSV format: expected header name,symbol,description,denominations")
	}

	var specs []currency.Spec
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < columns {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, columns, len(rec))
		}
		spec := currency.Spec{
			Name:        strings.TrimSpace(rec[0]),
			Symbol:      strings.TrimSpace(rec[1]),
			Description: strings.TrimSpace(rec[2]),
		}
		if spec.Denominations, err = parseDenominations(rec[3]); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := parser.ValidateSpec(spec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseDenominations(field string) ([]currency.DenominationSpec, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, nil
	}
	var out []currency.DenominationSpec
	for _, pair := range strings.Split(field, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("denomination %q: expected name:value", pair)
		}
		v, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("denomination %q: %w", name, err)
		}
		out = append(out, currency.DenominationSpec{Name: strings.TrimSpace(name), Value: v})
	}
	return out, nil
}
