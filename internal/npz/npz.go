// Package npz reads and writes named numpy arrays bundled in a zip
// archive, the layout numpy uses for .npz files.
package npz

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/kshedden/gonpy"
	"github.com/pkg/errors"
)

const (
	// LabelWidth is the byte width used to store labels and names
	LabelWidth = 100

	// ListWidth is the byte width used for comma separated lists of labels
	ListWidth = 300
)

// Archive is a set of encoded arrays keyed by name.
type Archive struct {
	arrays map[string][]byte
}

// New creates an empty archive.
func New() *Archive {
	return &Archive{arrays: make(map[string][]byte)}
}

// Keys returns the array names in sorted order.
func (a *Archive) Keys() []string {
	keys := make([]string, 0, len(a.arrays))
	for k := range a.arrays {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether an array is stored under key.
func (a *Archive) Has(key string) bool {
	_, ok := a.arrays[key]
	return ok
}

// PutFloat64 stores a float64 array with the given shape.
func (a *Archive) PutFloat64(key string, shape []int, data []float64) error {
	return a.put(key, shape, len(data), func(w *gonpy.NpyWriter) error {
		return w.WriteFloat64(data)
	})
}

// PutInt64 stores an int64 array with the given shape.
func (a *Archive) PutInt64(key string, shape []int, data []int64) error {
	return a.put(key, shape, len(data), func(w *gonpy.NpyWriter) error {
		return w.WriteInt64(data)
	})
}

// PutStrings stores strings as a [len(s), width] uint8 array, each string
// zero padded to width bytes.
func (a *Archive) PutStrings(key string, width int, s []string) error {
	data := make([]uint8, len(s)*width)
	for i, v := range s {
		if len(v) > width {
			return fmt.Errorf("npz: %q is longer than %d bytes and cannot be stored in %s", v, width, key)
		}
		copy(data[i*width:], v)
	}

	return a.put(key, []int{len(s), width}, len(data), func(w *gonpy.NpyWriter) error {
		return w.WriteUint8(data)
	})
}

func (a *Archive) put(key string, shape []int, n int, write func(*gonpy.NpyWriter) error) error {
	if size := product(shape); size != n {
		return fmt.Errorf("npz: shape %v of %s does not match %d values", shape, key, n)
	}

	buf := &bytes.Buffer{}
	w, err := gonpy.NewWriter(nopCloser{buf})
	if err != nil {
		return errors.Wrapf(err, "creating writer for %s", key)
	}
	w.Shape = append([]int{}, shape...)
	if err := write(w); err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}

	a.arrays[key] = buf.Bytes()
	return nil
}

// Float64 returns a float64 array and its shape.
func (a *Archive) Float64(key string) ([]float64, []int, error) {
	r, err := a.reader(key)
	if err != nil {
		return nil, nil, err
	}
	data, err := r.GetFloat64()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "decoding %s", key)
	}
	return data, r.Shape, nil
}

// Int64 returns an int64 array and its shape.
func (a *Archive) Int64(key string) ([]int64, []int, error) {
	r, err := a.reader(key)
	if err != nil {
		return nil, nil, err
	}
	data, err := r.GetInt64()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "decoding %s", key)
	}
	return data, r.Shape, nil
}

// Strings returns strings stored with PutStrings, trailing zero bytes removed.
func (a *Archive) Strings(key string) ([]string, error) {
	r, err := a.reader(key)
	if err != nil {
		return nil, err
	}
	if len(r.Shape) != 2 {
		return nil, fmt.Errorf("npz: %s has shape %v, expected two dimensions", key, r.Shape)
	}
	data, err := r.GetUint8()
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", key)
	}

	n, width := r.Shape[0], r.Shape[1]
	s := make([]string, n)
	for i := range s {
		s[i] = strings.TrimRight(string(data[i*width:(i+1)*width]), "\x00")
	}
	return s, nil
}

func (a *Archive) reader(key string) (*gonpy.NpyReader, error) {
	b, ok := a.arrays[key]
	if !ok {
		return nil, fmt.Errorf("npz: no array named %s", key)
	}
	r, err := gonpy.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrapf(err, "reading header of %s", key)
	}
	return r, nil
}

// Write writes every array as "<key>.npy" into a zip archive.
func (a *Archive) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, key := range a.Keys() {
		f, err := zw.Create(key + ".npy")
		if err != nil {
			return errors.Wrapf(err, "adding %s", key)
		}
		if _, err := f.Write(a.arrays[key]); err != nil {
			return errors.Wrapf(err, "writing %s", key)
		}
	}
	return zw.Close()
}

// WriteFile writes the archive to a file.
func (a *Archive) WriteFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := a.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read reads an archive. Entries that are not .npy files are ignored.
func Read(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, errors.Wrap(err, "npz: not a zip archive")
	}

	a := New()
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".npy") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", f.Name)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", f.Name)
		}
		a.arrays[strings.TrimSuffix(f.Name, ".npy")] = b
	}
	return a, nil
}

// ReadFile reads an archive from a file.
func ReadFile(filename string) (*Archive, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return Read(f, info.Size())
}

// ReadBytes reads an archive held in memory.
func ReadBytes(b []byte) (*Archive, error) {
	return Read(bytes.NewReader(b), int64(len(b)))
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// nopCloser keeps the npy writer from closing the buffer it writes into
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
