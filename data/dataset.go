package data

import (
	"encoding/json"
	"math"
	"os"

	"github.com/pkg/errors"
)

// Dataset is one completed (or still filling) two-dimensional sweep as
// stored on disk: the measured grid together with both cell-center
// axes and a display title.
type Dataset struct {
	Title string
	Grid  *Grid
}

// maskedVals encodes a sample slice as JSON. Masked samples, NaN or
// infinite, become null: encoding/json refuses IEEE specials outright.
type maskedVals []float64

func (m maskedVals) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(m))
	for i, v := range m {
		if isFinite(v) {
			vv := v
			out[i] = &vv
		}
	}
	return json.Marshal(out)
}

func (m *maskedVals) UnmarshalJSON(b []byte) error {
	var raw []*float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	vals := make([]float64, len(raw))
	for i, p := range raw {
		if p == nil {
			vals[i] = math.NaN()
		} else {
			vals[i] = *p
		}
	}
	*m = vals
	return nil
}

type arrayJSON struct {
	Name   string     `json:"name"`
	Label  string     `json:"label,omitempty"`
	Unit   string     `json:"unit,omitempty"`
	Values maskedVals `json:"values"`
}

type gridJSON struct {
	Name   string       `json:"name"`
	Label  string       `json:"label,omitempty"`
	Unit   string       `json:"unit,omitempty"`
	Values []maskedVals `json:"values"`
}

type datasetJSON struct {
	Title string     `json:"title,omitempty"`
	X     *arrayJSON `json:"x"`
	Y     *arrayJSON `json:"y"`
	Z     *gridJSON  `json:"z"`
}

func toArrayJSON(a *Array) *arrayJSON {
	if a == nil {
		return nil
	}
	return &arrayJSON{Name: a.Name, Label: a.Label, Unit: a.Unit, Values: a.V}
}

func fromArrayJSON(a *arrayJSON) *Array {
	if a == nil {
		return nil
	}
	return &Array{Name: a.Name, Label: a.Label, Unit: a.Unit, V: a.Values}
}

// SaveDataset writes ds to path as indented JSON.
func SaveDataset(path string, ds *Dataset) error {
	if ds == nil || ds.Grid == nil {
		return errors.New("dataset: nothing to save")
	}
	g := ds.Grid
	zj := &gridJSON{Name: g.Name, Label: g.Label, Unit: g.Unit}
	for _, row := range g.V {
		zj.Values = append(zj.Values, maskedVals(row))
	}
	doc := datasetJSON{
		Title: ds.Title,
		X:     toArrayJSON(g.X),
		Y:     toArrayJSON(g.Y),
		Z:     zj,
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "dataset: encode")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrap(err, "dataset: write")
	}
	return nil
}

// LoadDataset reads a dataset from path and checks its shape: the grid
// must be rectangular and each axis, when present, must match the grid
// dimension it spans.
func LoadDataset(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "dataset: read")
	}
	var doc datasetJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrapf(err, "dataset: decode %s", path)
	}
	if doc.Z == nil {
		return nil, errors.Errorf("dataset %s: missing z grid", path)
	}
	g := &Grid{
		Name:  doc.Z.Name,
		Label: doc.Z.Label,
		Unit:  doc.Z.Unit,
		X:     fromArrayJSON(doc.X),
		Y:     fromArrayJSON(doc.Y),
	}
	for _, row := range doc.Z.Values {
		g.V = append(g.V, row)
	}
	rows, cols := g.Dims()
	for i, row := range g.V {
		if len(row) != cols {
			return nil, errors.Errorf("dataset %s: ragged z, row %d has %d of %d columns",
				path, i, len(row), cols)
		}
	}
	if g.X != nil && g.X.Len() != cols {
		return nil, errors.Errorf("dataset %s: x has %d samples for %d columns",
			path, g.X.Len(), cols)
	}
	if g.Y != nil && g.Y.Len() != rows {
		return nil, errors.Errorf("dataset %s: y has %d samples for %d rows",
			path, g.Y.Len(), rows)
	}
	return &Dataset{Title: doc.Title, Grid: g}, nil
}
