package exec

import (
	"fmt"
	"path/filepath"
	"strings"
)

// LabelError is returned when the number of labels doesn't match the
// inputs, or when two inputs have the same label.
type LabelError struct {
	Inputs, Labels int

	// Duplicate is the repeated label
	Duplicate string
}

func (e *LabelError) Error() string {
	if e.Duplicate != "" {
		return fmt.Sprintf("the label %s is used for more than one input", e.Duplicate)
	}
	return fmt.Sprintf(
		"the number of labels must be the same as the number of input files: %d labels for %d files",
		e.Labels, e.Inputs,
	)
}

// Labels names each input. Without labels, the base name of each path is
// used, minus its extension if trimExt. Names found in rename are replaced.
// Labels must be unique.
func Labels(paths, labels []string, rename map[string]string, trimExt bool) ([]string, error) {
	if len(labels) > 0 && len(labels) != len(paths) {
		return nil, &LabelError{Inputs: len(paths), Labels: len(labels)}
	}

	out := make([]string, len(paths))
	seen := make(map[string]bool, len(paths))
	for i, path := range paths {
		label := path
		if len(labels) > 0 {
			label = labels[i]
		} else if path != "-" {
			label = filepath.Base(path)
			if trimExt {
				label = strings.TrimSuffix(label, filepath.Ext(label))
			}
		}

		if r, ok := rename[label]; ok {
			label = r
		}

		if seen[label] {
			return nil, &LabelError{Inputs: len(paths), Labels: len(labels), Duplicate: label}
		}
		seen[label] = true
		out[i] = label
	}
	return out, nil
}
