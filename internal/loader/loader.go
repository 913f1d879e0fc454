// Package loader parses oil and fuel specification databases from CSV
// sources into validated, identifier-keyed lookup tables.
package loader

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bmateuszideas/DPF-CALC/internal/errors"
	"github.com/bmateuszideas/DPF-CALC/internal/models"
)

// OilDB maps oil identifiers to their specifications. Insertion order
// from the source table is preserved in IDs for deterministic iteration.
type OilDB struct {
	specs map[string]models.OilSpec
	ids   []string
}

// Get returns the spec for an identifier
func (db *OilDB) Get(id string) (models.OilSpec, bool) {
	s, ok := db.specs[id]
	return s, ok
}

// IDs returns identifiers in source order
func (db *OilDB) IDs() []string {
	return db.ids
}

// Len returns the number of specs
func (db *OilDB) Len() int {
	return len(db.ids)
}

// FuelDB maps fuel identifiers to their specifications
type FuelDB struct {
	specs map[string]models.FuelSpec
	ids   []string
}

// Get returns the spec for an identifier
func (db *FuelDB) Get(id string) (models.FuelSpec, bool) {
	s, ok := db.specs[id]
	return s, ok
}

// IDs returns identifiers in source order
func (db *FuelDB) IDs() []string {
	return db.ids
}

// Len returns the number of specs
func (db *FuelDB) Len() int {
	return len(db.ids)
}

// row gives field access by column name for one CSV record
type row struct {
	indices map[string]int
	record  []string
	line    int
}

func (r row) get(key string) string {
	if idx, ok := r.indices[key]; ok && idx < len(r.record) {
		return strings.TrimSpace(r.record[idx])
	}
	return ""
}

func (r row) requiredFloat(key string) (float64, error) {
	raw := r.get(key)
	if raw == "" {
		return 0, errors.DataFormat("line %d: missing required field %q", r.line, key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.DataFormat("line %d: field %q is not numeric: %q", r.line, key, raw)
	}
	return v, nil
}

func (r row) optionalFloat(key string) (float64, error) {
	raw := r.get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.DataFormat("line %d: field %q is not numeric: %q", r.line, key, raw)
	}
	return v, nil
}

// readRows reads a CSV source and yields each data row to fn. The
// identifier column must be present, non-empty, and unique across rows;
// any violation aborts the whole load.
func readRows(r io.Reader, idColumn string, fn func(id string, rw row) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return errors.DataFormat("failed to read header: %v", err)
	}

	indices := make(map[string]int)
	for i, h := range header {
		indices[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := indices[idColumn]; !ok {
		return errors.DataFormat("identifier column %q not found in header", idColumn)
	}

	seen := make(map[string]int)
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.DataFormat("line %d: %v", line+1, err)
		}
		line++

		rw := row{indices: indices, record: record, line: line}
		id := rw.get(idColumn)
		if id == "" {
			return errors.DataFormat("line %d: missing %s", line, idColumn)
		}
		if prev, dup := seen[id]; dup {
			return errors.DataFormat("duplicate %s %q at lines %d and %d", idColumn, id, prev, line)
		}
		seen[id] = line

		if err := fn(id, rw); err != nil {
			return err
		}
	}

	return nil
}

// LoadOils parses an oils CSV source keyed by the oil_id column.
// Required columns: sulfated_ash_pct, density_kg_per_l. Optional numeric
// columns: phosphorus_pct, sulfur_pct. Descriptive columns pass through
// as strings and default to "".
func LoadOils(r io.Reader) (*OilDB, error) {
	db := &OilDB{specs: make(map[string]models.OilSpec)}

	err := readRows(r, "oil_id", func(id string, rw row) error {
		spec := models.OilSpec{
			ID:    id,
			Name:  rw.get("product_name"),
			Brand: rw.get("brand"),
			Notes: rw.get("notes"),
		}

		var err error
		if spec.SulfatedAshPct, err = rw.requiredFloat("sulfated_ash_pct"); err != nil {
			return err
		}
		if spec.DensityKgPerL, err = rw.requiredFloat("density_kg_per_l"); err != nil {
			return err
		}
		if spec.PhosphorusPct, err = rw.optionalFloat("phosphorus_pct"); err != nil {
			return err
		}
		if spec.SulfurPct, err = rw.optionalFloat("sulfur_pct"); err != nil {
			return err
		}

		db.specs[id] = spec
		db.ids = append(db.ids, id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// LoadFuels parses a fuels CSV source keyed by the fuel_id column.
// Required columns: sulfur_ppm, density_kg_per_l.
func LoadFuels(r io.Reader) (*FuelDB, error) {
	db := &FuelDB{specs: make(map[string]models.FuelSpec)}

	err := readRows(r, "fuel_id", func(id string, rw row) error {
		spec := models.FuelSpec{
			ID:    id,
			Name:  rw.get("name"),
			Brand: rw.get("brand"),
			Notes: rw.get("notes"),
		}

		var err error
		if spec.SulfurPPM, err = rw.requiredFloat("sulfur_ppm"); err != nil {
			return err
		}
		if spec.DensityKgPerL, err = rw.requiredFloat("density_kg_per_l"); err != nil {
			return err
		}

		db.specs[id] = spec
		db.ids = append(db.ids, id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// LoadOilsFile loads an oils CSV from disk
func LoadOilsFile(path string) (*OilDB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.DataFormat("failed to open %s: %v", path, err)
	}
	defer f.Close()
	return LoadOils(f)
}

// LoadFuelsFile loads a fuels CSV from disk
func LoadFuelsFile(path string) (*FuelDB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.DataFormat("failed to open %s: %v", path, err)
	}
	defer f.Close()
	return LoadFuels(f)
}
