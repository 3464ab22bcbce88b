package exec

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ccdmb/catastrophy/internal/count"
	"github.com/ccdmb/catastrophy/internal/hmmer"
	"github.com/ccdmb/catastrophy/internal/model"
	"github.com/pkg/errors"
)

// TrainConfig are the inputs of Train.
type TrainConfig struct {
	// search results of the training genomes, and their labels
	Inputs []string
	Labels []string
	Format hmmer.FileType

	// the HMMER database that was searched
	HMMs string

	// a table of the known classes of each label
	Classes string

	// JSON of the classes expected in each nomenclature. Optional
	Nomenclatures string

	Components int
}

// Train fits a new model. Every input label must have known classes and
// every classified label must be an input.
func Train(c TrainConfig) (*model.Model, error) {
	if len(c.Inputs) != len(c.Labels) {
		return nil, &LabelError{Inputs: len(c.Inputs), Labels: len(c.Labels)}
	}

	var nomenclatures map[string][]string
	if c.Nomenclatures != "" {
		var err error
		if nomenclatures, err = readNomenclatures(c.Nomenclatures); err != nil {
			return nil, err
		}
	}

	classes, err := readClasses(c.Classes)
	if err != nil {
		return nil, err
	}
	if err := sameLabels(classes, c.Labels); err != nil {
		return nil, err
	}

	f, err := os.Open(c.HMMs)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", c.HMMs)
	}
	lengths, err := model.ReadHMMLengths(f, c.HMMs)
	f.Close()
	if err != nil {
		return nil, err
	}

	sources := make([]count.Matches, len(c.Inputs))
	for i, path := range c.Inputs {
		r, err := open(path)
		if err != nil {
			return nil, err
		}
		defer r.Close()

		sources[i] = hmmer.NewScanner(r, path, c.Format, lengths)
	}

	counts, err := count.CountMulti(sources, c.Labels, lengths.Names())
	if err != nil {
		return nil, err
	}

	return model.Fit(counts, classes, nomenclatures, lengths, c.Components)
}

// readNomenclatures reads a JSON object of class lists keyed by nomenclature
func readNomenclatures(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	var nomenclatures map[string][]string
	if err := json.Unmarshal(data, &nomenclatures); err != nil {
		return nil, &hmmer.ParseError{Source: path, Msg: err.Error()}
	}

	keys := make([]string, 0, len(nomenclatures))
	for k := range nomenclatures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if strings.Join(keys, ",") != strings.Join(model.Nomenclatures, ",") {
		return nil, &hmmer.ParseError{
			Source: path,
			Msg:    fmt.Sprintf("has the keys %v, expected exactly %v", keys, model.Nomenclatures),
		}
	}
	return nomenclatures, nil
}

func readClasses(path string) ([]model.NomenclatureClass, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	return model.ReadClasses(f, path)
}

// sameLabels checks the classified labels and the input labels are the same
func sameLabels(classes []model.NomenclatureClass, labels []string) error {
	inputs := make(map[string]bool, len(labels))
	for _, l := range labels {
		inputs[l] = true
	}

	var diff []string
	classified := make(map[string]bool, len(classes))
	for _, c := range classes {
		classified[c.Label] = true
		if !inputs[c.Label] {
			diff = append(diff, c.Label)
		}
	}
	for _, l := range labels {
		if !classified[l] {
			diff = append(diff, l)
		}
	}

	if len(diff) > 0 {
		sort.Strings(diff)
		return fmt.Errorf("the input labels and the class labels are different: %s", strings.Join(diff, ", "))
	}
	return nil
}
