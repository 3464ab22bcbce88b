package model

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ccdmb/catastrophy/internal/hmmer"
	"github.com/ccdmb/catastrophy/internal/npz"
)

// Nomenclatures names the three trophic class schemes, in output order.
var Nomenclatures = []string{"nomenclature1", "nomenclature2", "nomenclature3"}

// NomenclatureClass is the known classification of a training genome.
type NomenclatureClass struct {
	Label  string
	Genome string

	// Classes holds the class under each of Nomenclatures
	Classes [3]string
}

// Class returns the class under the named nomenclature.
func (c NomenclatureClass) Class(nomenclature string) (string, bool) {
	for i, n := range Nomenclatures {
		if n == nomenclature {
			return c.Classes[i], true
		}
	}
	return "", false
}

var classColumns = []string{"label", "genome", "nomenclature1", "nomenclature2", "nomenclature3"}

// ReadClasses reads a tab separated table with a header naming at least the
// columns label, genome, nomenclature1, nomenclature2 and nomenclature3.
func ReadClasses(r io.Reader, source string) ([]NomenclatureClass, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, &hmmer.ParseError{Source: source, Line: 1, Msg: fmt.Sprintf("failed to read the header: %v", err)}
	}

	index := make(map[string]int)
	for i, h := range header {
		index[h] = i
	}

	positions := make([]int, len(classColumns))
	for i, col := range classColumns {
		pos, ok := index[col]
		if !ok {
			return nil, &hmmer.ParseError{
				Source: source,
				Line:   1,
				Msg:    fmt.Sprintf("missing the required column %q, expected label, genome, nomenclature1, nomenclature2 and nomenclature3", col),
			}
		}
		positions[i] = pos
	}

	var classes []NomenclatureClass
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			if perr, ok := err.(*csv.ParseError); ok {
				line = perr.Line
			}
			return nil, &hmmer.ParseError{Source: source, Line: line, Msg: err.Error()}
		}

		get := func(i int) string { return record[positions[i]] }
		classes = append(classes, NomenclatureClass{
			Label:   get(0),
			Genome:  get(1),
			Classes: [3]string{get(2), get(3), get(4)},
		})
	}

	return classes, nil
}

// packClasses stores classes as one string array per column.
func packClasses(a *npz.Archive, prefix string, classes []NomenclatureClass) error {
	columns := make([][]string, len(classColumns))
	for _, c := range classes {
		columns[0] = append(columns[0], c.Label)
		columns[1] = append(columns[1], c.Genome)
		for i, class := range c.Classes {
			columns[i+2] = append(columns[i+2], class)
		}
	}

	for i, col := range classColumns {
		if err := a.PutStrings(prefix+col, npz.LabelWidth, columns[i]); err != nil {
			return err
		}
	}
	return nil
}

// unpackClasses reads classes stored with packClasses. ok is false if
// there are none stored under prefix.
func unpackClasses(a *npz.Archive, prefix string) (classes []NomenclatureClass, ok bool, err error) {
	if !a.Has(prefix + classColumns[0]) {
		return nil, false, nil
	}

	columns := make([][]string, len(classColumns))
	for i, col := range classColumns {
		if columns[i], err = a.Strings(prefix + col); err != nil {
			return nil, false, err
		}
		if len(columns[i]) != len(columns[0]) {
			return nil, false, fmt.Errorf("%s%s has %d entries, expected %d", prefix, col, len(columns[i]), len(columns[0]))
		}
	}

	classes = make([]NomenclatureClass, len(columns[0]))
	for i := range classes {
		classes[i] = NomenclatureClass{
			Label:   columns[0][i],
			Genome:  columns[1][i],
			Classes: [3]string{columns[2][i], columns[3][i], columns[4][i]},
		}
	}
	return classes, true, nil
}
