package model

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ccdmb/catastrophy/internal/hmmer"
	"github.com/ccdmb/catastrophy/internal/npz"
)

// HMMLengths maps each HMM family of a dbCAN release to its length. The
// sorted family names are the columns of every count matrix.
type HMMLengths struct {
	names   []string
	lengths map[string]int
}

// NewHMMLengths creates HMMLengths from a map of family names to lengths.
func NewHMMLengths(lengths map[string]int) *HMMLengths {
	h := &HMMLengths{lengths: make(map[string]int, len(lengths))}
	for name, n := range lengths {
		h.names = append(h.names, name)
		h.lengths[name] = n
	}
	sort.Strings(h.names)
	return h
}

// Names returns the family names, sorted.
func (h *HMMLengths) Names() []string {
	return append([]string{}, h.names...)
}

// Len returns the length of an HMM family.
func (h *HMMLengths) Len(hmm string) (int, bool) {
	n, ok := h.lengths[hmm]
	return n, ok
}

// Size is the number of families.
func (h *HMMLengths) Size() int {
	return len(h.names)
}

// ReadHMMLengths reads the NAME and LENG header lines of an HMMER3 text
// database. source names r in errors.
func ReadHMMLengths(r io.Reader, source string) (*HMMLengths, error) {
	lengths := make(map[string]int)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	name := ""
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "NAME"):
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return nil, &hmmer.ParseError{Source: source, Line: lineNo, Msg: "NAME line without a name"}
			}
			name = hmmer.SplitHMM(fields[1])

		case strings.HasPrefix(line, "LENG"):
			if name == "" {
				return nil, &hmmer.ParseError{Source: source, Line: lineNo, Msg: "LENG line without a preceding NAME"}
			}
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return nil, &hmmer.ParseError{Source: source, Line: lineNo, Msg: "LENG line without a length"}
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 1 {
				return nil, &hmmer.ParseError{
					Source: source,
					Line:   lineNo,
					Msg:    fmt.Sprintf("illegal HMM length %q, expected a positive integer", fields[1]),
				}
			}
			lengths[name] = n
			name = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(lengths) == 0 {
		return nil, &hmmer.ParseError{Source: source, Msg: "no HMMs found, expected an HMMER3 text database"}
	}

	return NewHMMLengths(lengths), nil
}

// Pack adds the lengths as "<prefix>names" and "<prefix>lengths".
func (h *HMMLengths) Pack(a *npz.Archive, prefix string) error {
	lengths := make([]int64, len(h.names))
	for i, name := range h.names {
		lengths[i] = int64(h.lengths[name])
	}

	if err := a.PutStrings(prefix+"names", npz.LabelWidth, h.names); err != nil {
		return err
	}
	return a.PutInt64(prefix+"lengths", []int{len(lengths)}, lengths)
}

// UnpackHMMLengths reads lengths stored with Pack.
func UnpackHMMLengths(a *npz.Archive, prefix string) (*HMMLengths, error) {
	names, err := a.Strings(prefix + "names")
	if err != nil {
		return nil, err
	}
	lengths, _, err := a.Int64(prefix + "lengths")
	if err != nil {
		return nil, err
	}
	if len(names) != len(lengths) {
		return nil, fmt.Errorf("%d HMM names but %d lengths", len(names), len(lengths))
	}

	m := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := m[name]; dup {
			return nil, fmt.Errorf("HMM %s is stored twice", name)
		}
		m[name] = int(lengths[i])
	}
	return NewHMMLengths(m), nil
}
