// Package catalog loads the strategy family catalog: each named signal
// family and its historical average return percentage.
package catalog

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/ourotrade/ouro/pkg/errors"
)

// Catalog is the read-only family → average return lookup, loaded once per
// session.
type Catalog struct {
	returns map[string]float64
}

// Load reads the catalog CSV. The file must carry a header containing
// Family and AvgPctRtn columns. A load failure is fatal to the session.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeCatalogLoadFailed, err, "failed to open strategy catalog %s", path)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads catalog rows from r. Split out of Load for tests.
func Parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalogLoadFailed, "failed to read catalog header", err)
	}

	familyCol, returnCol := -1, -1

	for i, name := range header {
		switch name {
		case "Family":
			familyCol = i
		case "AvgPctRtn":
			returnCol = i
		}
	}

	if familyCol < 0 || returnCol < 0 {
		return nil, errors.New(errors.ErrCodeCatalogLoadFailed, "catalog header missing Family or AvgPctRtn column")
	}

	returns := make(map[string]float64)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCatalogLoadFailed, "failed to read catalog row", err)
		}

		avg, err := strconv.ParseFloat(record[returnCol], 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeCatalogLoadFailed, err, "invalid average return for family %s", record[familyCol])
		}

		returns[record[familyCol]] = avg
	}

	return &Catalog{returns: returns}, nil
}

// AverageReturn returns the historical average return percentage for a
// family. An unknown family is a logical rejection, not a transient error.
func (c *Catalog) AverageReturn(family string) (float64, error) {
	avg, ok := c.returns[family]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeFamilyNotFound, "strategy family %q is not in the catalog", family)
	}

	return avg, nil
}

// Len returns the number of loaded families.
func (c *Catalog) Len() int {
	return len(c.returns)
}
