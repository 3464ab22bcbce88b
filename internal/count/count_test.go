package count

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ccdmb/catastrophy/internal/hmmer"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// slice replays a fixed list of Matches
type slice struct {
	ms  []hmmer.Match
	i   int
	err error
}

func (s *slice) Next() bool {
	if s.i >= len(s.ms) {
		return false
	}
	s.i++
	return true
}

func (s *slice) Match() hmmer.Match { return s.ms[s.i-1] }

func (s *slice) Err() error { return s.err }

func matches(pairs ...string) *slice {
	s := &slice{}
	for i := 0; i+1 < len(pairs); i += 2 {
		s.ms = append(s.ms, hmmer.Match{HMM: pairs[i], SeqID: pairs[i+1]})
	}
	return s
}

func TestCount(t *testing.T) {
	columns := []string{"AA9", "CBM1", "CE10", "GH3"}

	tests := []struct {
		name string
		ms   Matches
		want []int
	}{
		{
			"distinct sequences",
			matches(
				"CBM1", "s1", "CBM1", "s2", "CBM1", "s1",
				"GH3", "s1", "GH3", "s2", "GH3", "s3",
			),
			[]int{0, 2, 0, 3},
		},
		{
			"no matches",
			matches(),
			[]int{0, 0, 0, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Count(tt.ms, columns)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Count() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCount_unknown(t *testing.T) {
	ms := matches("GH3", "s1", "XX1", "s1", "GH3", "s2", "YY2", "s3", "XX1", "s4")

	_, err := Count(ms, []string{"GH3"})

	var herr *HMMError
	if !errors.As(err, &herr) {
		t.Fatalf("Count() error = %v, want an *HMMError", err)
	}
	if want := []string{"XX1", "YY2"}; !reflect.DeepEqual(herr.HMMs, want) {
		t.Errorf("HMMError.HMMs = %v, want %v", herr.HMMs, want)
	}
	if !strings.Contains(herr.Error(), "XX1, YY2") {
		t.Errorf("Error() = %q", herr.Error())
	}
}

func TestCount_sourceError(t *testing.T) {
	ms := matches("GH3", "s1")
	ms.err = errors.New("bad line")

	if _, err := Count(ms, []string{"GH3"}); err == nil || err.Error() != "bad line" {
		t.Errorf("Count() error = %v, want the source error", err)
	}
}

func TestCountMulti(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	columns := []string{"CBM1", "GH3"}
	got, err := CountMulti(
		[]Matches{
			matches("CBM1", "s1", "GH3", "s1"),
			matches(),
			matches("GH3", "s1", "GH3", "s2"),
		},
		[]string{"b", "a", "c"},
		columns,
	)
	if err != nil {
		t.Fatal(err)
	}

	if r, c := got.Dims(); r != 3 || c != 2 {
		t.Fatalf("Dims() = %d, %d, want 3, 2", r, c)
	}
	if rows := got.Rows(); !reflect.DeepEqual(rows, []string{"b", "a", "c"}) {
		t.Errorf("Rows() = %v", rows)
	}
	if cols := got.Columns(); !reflect.DeepEqual(cols, columns) {
		t.Errorf("Columns() = %v", cols)
	}
	if data := got.Data(); !reflect.DeepEqual(data, []float64{1, 1, 0, 0, 0, 2}) {
		t.Errorf("Data() = %v", data)
	}

	// the empty row is warned about but still counted
	if len(hook.Entries) != 1 || hook.LastEntry().Level != log.WarnLevel || hook.LastEntry().Data["label"] != "a" {
		t.Errorf("expected one warning for label a, got %v", hook.AllEntries())
	}
}

func TestCountMulti_labels(t *testing.T) {
	if _, err := CountMulti([]Matches{matches()}, nil, []string{"GH3"}); err == nil {
		t.Error("CountMulti() expected an error when labels don't match inputs")
	}
}
