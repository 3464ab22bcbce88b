package exec

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ccdmb/catastrophy/internal/count"
	"github.com/ccdmb/catastrophy/internal/fasta"
	"github.com/ccdmb/catastrophy/internal/hmmer"
	"github.com/ccdmb/catastrophy/internal/model"
)

var trainingLabels = []string{"g1", "g2", "g3", "g4", "g5", "g6"}

func testdata(names ...string) []string {
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join("testdata", n+".tsv")
	}
	return paths
}

func trainTestModel(t *testing.T) *model.Model {
	t.Helper()

	m, err := Train(TrainConfig{
		Inputs:        testdata(trainingLabels...),
		Labels:        trainingLabels,
		Format:        hmmer.DBCAN,
		HMMs:          filepath.Join("testdata", "hmms.txt"),
		Classes:       filepath.Join("testdata", "classes.tsv"),
		Nomenclatures: filepath.Join("testdata", "nomenclatures.json"),
		Components:    2,
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestTrain(t *testing.T) {
	m := trainTestModel(t)

	if got := m.HMMLengths.Names(); !reflect.DeepEqual(got, []string{"AA9", "CBM1", "GH5", "GT2"}) {
		t.Errorf("HMM names = %v", got)
	}
	if got := m.TrainingData.PCA.Rows(); !reflect.DeepEqual(got, trainingLabels) {
		t.Errorf("training labels = %v", got)
	}
}

func TestTrain_errors(t *testing.T) {
	dir := t.TempDir()
	badJSON := filepath.Join(dir, "nomenclatures.json")
	if err := os.WriteFile(badJSON, []byte(`{"nomenclature1": ["a"]}`), 0666); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		modify func(*TrainConfig)
	}{
		{"missing input label", func(c *TrainConfig) {
			c.Inputs, c.Labels = c.Inputs[:5], c.Labels[:5]
		}},
		{"label count", func(c *TrainConfig) {
			c.Labels = c.Labels[:5]
		}},
		{"nomenclature keys", func(c *TrainConfig) {
			c.Nomenclatures = badJSON
		}},
		{"missing classes", func(c *TrainConfig) {
			c.Classes = filepath.Join(dir, "missing.tsv")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := TrainConfig{
				Inputs:     testdata(trainingLabels...),
				Labels:     append([]string{}, trainingLabels...),
				Format:     hmmer.DBCAN,
				HMMs:       filepath.Join("testdata", "hmms.txt"),
				Classes:    filepath.Join("testdata", "classes.tsv"),
				Components: 2,
			}
			tt.modify(&c)

			if _, err := Train(c); err == nil {
				t.Error("Train() expected an error")
			}
		})
	}
}

func TestPredict(t *testing.T) {
	m := trainTestModel(t)

	var rcd, pca, counts bytes.Buffer
	pred, err := Predict(testdata("new"), []string{"new"}, hmmer.DBCAN, m, Outputs{
		RCD:       &rcd,
		PCA:       &pca,
		Counts:    &counts,
		Threshold: model.DefaultThreshold,
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := counts.String(); got != "# label\tAA9\tCBM1\tGH5\tGT2\nnew\t3\t1\t5\t1\n" {
		t.Errorf("counts = %q", got)
	}

	// header and 3 + 3 + 4 classes
	lines := strings.Split(strings.TrimSpace(rcd.String()), "\n")
	if len(lines) != 11 || lines[0] != "# label\tnomenclature\tclass\tvalue" {
		t.Errorf("classifications = %q", rcd.String())
	}
	if lines[1] != "new\tnomenclature1\tsaprotroph\t1.000000" {
		t.Errorf("best nomenclature1 class = %q", lines[1])
	}

	// header, 6 training genomes and the prediction
	if rows := strings.Split(strings.TrimSpace(pca.String()), "\n"); len(rows) != 8 || !strings.HasPrefix(rows[7], "new\t.\t") {
		t.Errorf("pca = %q", pca.String())
	}

	if got := pred.PCA.Rows(); !reflect.DeepEqual(got, []string{"new"}) {
		t.Errorf("prediction labels = %v", got)
	}
}

func TestPredict_errors(t *testing.T) {
	m := trainTestModel(t)

	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.tsv")
	content := "PL1.hmm\t300\ts1\t500\t1e-30\t0\t290\t10\t300\t0.96\n"
	if err := os.WriteFile(unknown, []byte(content), 0666); err != nil {
		t.Fatal(err)
	}

	var rcd bytes.Buffer

	_, err := Predict([]string{unknown}, []string{"u"}, hmmer.DBCAN, m, Outputs{RCD: &rcd})
	var herr *count.HMMError
	if !errors.As(err, &herr) || !reflect.DeepEqual(herr.HMMs, []string{"PL1"}) {
		t.Errorf("Predict() error = %v, want an *count.HMMError", err)
	}

	_, err = Predict(testdata("new"), []string{"new"}, hmmer.Domtab, m, Outputs{RCD: &rcd})
	var perr *hmmer.ParseError
	if !errors.As(err, &perr) || perr.Guess != hmmer.DBCAN {
		t.Errorf("Predict() error = %v, want a *hmmer.ParseError guessing dbcan", err)
	}

	_, err = Predict(testdata("new"), nil, hmmer.DBCAN, m, Outputs{RCD: &rcd})
	var lerr *LabelError
	if !errors.As(err, &lerr) {
		t.Errorf("Predict() error = %v, want a *LabelError", err)
	}
}

func TestLabels(t *testing.T) {
	paths := []string{"in/g1.fasta", "other/g2.faa", "-"}

	tests := []struct {
		name    string
		labels  []string
		rename  map[string]string
		trimExt bool
		want    []string
		wantErr bool
	}{
		{"base names", nil, nil, false, []string{"g1.fasta", "g2.faa", "-"}, false},
		{"trimmed", nil, nil, true, []string{"g1", "g2", "-"}, false},
		{"given", []string{"a", "b", "c"}, nil, true, []string{"a", "b", "c"}, false},
		{"renamed", nil, map[string]string{"g2": "Fusarium", "x": "y"}, true, []string{"g1", "Fusarium", "-"}, false},
		{"too few", []string{"a"}, nil, false, nil, true},
		{"duplicate", []string{"a", "b", "a"}, nil, false, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Labels(paths, tt.labels, tt.rename, tt.trimExt)
			if tt.wantErr {
				var lerr *LabelError
				if !errors.As(err, &lerr) {
					t.Errorf("Labels() error = %v, want a *LabelError", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Labels() = %v, want %v", got, tt.want)
			}
		})
	}
}

// fakeHMMER writes hmmpress and hmmscan scripts. hmmscan always reports
// the test domain table.
func fakeHMMER(t *testing.T, dir string) (hmmpress, hmmscan string) {
	t.Helper()

	domtab, err := filepath.Abs(filepath.Join("testdata", "domtab.txt"))
	if err != nil {
		t.Fatal(err)
	}

	hmmpress = filepath.Join(dir, "hmmpress")
	hmmscan = filepath.Join(dir, "hmmscan")
	scripts := map[string]string{
		hmmpress: "for ext in h3f h3i h3m h3p; do echo x > \"$1.$ext\"; done\n",
		hmmscan:  "cp '" + domtab + "' \"$2\"\necho \"Query: $4\"\n",
	}
	for path, body := range scripts {
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
			t.Fatal(err)
		}
	}
	return hmmpress, hmmscan
}

func TestPipeline(t *testing.T) {
	m := trainTestModel(t)
	dir := t.TempDir()
	hmmpress, hmmscan := fakeHMMER(t, dir)

	hmms := filepath.Join(dir, "dbcan.txt")
	db, _ := os.ReadFile(filepath.Join("testdata", "hmms.txt"))
	if err := os.WriteFile(hmms, db, 0666); err != nil {
		t.Fatal(err)
	}

	var inputs []string
	for _, name := range []string{"p1.fasta", "p2.fasta"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(">s1\nmklv*\n"), 0666); err != nil {
			t.Fatal(err)
		}
		inputs = append(inputs, path)
	}

	out := filepath.Join(dir, "out")
	c := PipelineConfig{
		Inputs:    inputs,
		Labels:    []string{"p1", "p2"},
		OutDir:    out,
		HMMs:      hmms,
		HMMScan:   hmmscan,
		HMMPress:  hmmpress,
		NCPU:      2,
		Correct:   true,
		Quiet:     true,
		Model:     m,
		Threshold: model.DefaultThreshold,
		Plot:      "nomenclature1",
	}

	pred, err := Pipeline(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	if got := pred.PCA.Rows(); !reflect.DeepEqual(got, []string{"p1", "p2"}) {
		t.Errorf("prediction labels = %v", got)
	}

	for _, name := range []string{
		"classifications.tsv", "pca.tsv", "counts.tsv", "pca.png",
		filepath.Join("sanitised", "p1.fasta"),
		filepath.Join("search", "p2_domtab.tsv"),
		filepath.Join("search", "p2_hmmer.txt"),
	} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("Pipeline() didn't write %s", name)
		}
	}

	counts, _ := os.ReadFile(filepath.Join(out, "counts.tsv"))
	want := "# label\tAA9\tCBM1\tGH5\tGT2\np1\t0\t1\t2\t0\np2\t0\t1\t2\t0\n"
	if string(counts) != want {
		t.Errorf("counts = %q, want %q", counts, want)
	}

	sanitised, _ := os.ReadFile(filepath.Join(out, "sanitised", "p1.fasta"))
	if string(sanitised) != ">s1\nMKLV\n" {
		t.Errorf("sanitised = %q", sanitised)
	}

	// searches are cached so hmmscan isn't needed again
	c.HMMScan = filepath.Join(dir, "missing")
	c.Plot = ""
	if _, err := Pipeline(context.Background(), c); err != nil {
		t.Errorf("Pipeline() repeated = %v", err)
	}
}

func TestPipeline_badFasta(t *testing.T) {
	dir := t.TempDir()

	var inputs []string
	for name, content := range map[string]string{"p1.fasta": ">s1\nMK1V\n", "p2.fasta": ">s2\nMK#V\n"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0666); err != nil {
			t.Fatal(err)
		}
		inputs = append(inputs, path)
	}

	_, err := Pipeline(context.Background(), PipelineConfig{
		Inputs: inputs,
		Labels: []string{"a", "b"},
		OutDir: filepath.Join(dir, "out"),
		Quiet:  true,
	})

	var ferr *fasta.Error
	if !errors.As(err, &ferr) || len(ferr.Messages) != 2 {
		t.Errorf("Pipeline() error = %v, want a *fasta.Error for both files", err)
	}
}
