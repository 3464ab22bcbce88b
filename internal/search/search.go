// Package search runs HMMER's hmmpress and hmmscan on sanitised proteomes.
package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
)

// pressed are the extensions of the files hmmpress writes next to a database
var pressed = []string{".h3f", ".h3i", ".h3m", ".h3p"}

// ExecError is returned when an external tool exits unsuccessfully.
type ExecError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("failed to execute %s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("failed to execute %s: %v: %s", e.Tool, e.Err, msg)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Press indexes an HMMER database with hmmpress. Nothing is run if every
// index file exists. An incomplete set of index files is removed first,
// hmmpress refuses to overwrite them.
func Press(ctx context.Context, hmmpress, db string) error {
	var found []string
	for _, ext := range pressed {
		if _, err := os.Stat(db + ext); err == nil {
			found = append(found, db+ext)
		}
	}

	if len(found) == len(pressed) {
		log.WithField("db", db).Debug("hmm database is already pressed")
		return nil
	}

	for _, f := range found {
		if err := os.Remove(f); err != nil {
			return errors.Wrapf(err, "failed to remove the partial index %s", f)
		}
	}

	if _, err := os.Stat(db); err != nil {
		return errors.Wrapf(err, "failed to find an hmm database at %s", db)
	}

	path, err := exec.LookPath(hmmpress)
	if err != nil {
		return errors.Wrapf(err, "failed to find an hmmpress executable at %s", hmmpress)
	}

	cmd := exec.CommandContext(ctx, path, db)
	if output, err := cmd.CombinedOutput(); err != nil {
		return &ExecError{Tool: "hmmpress", Stderr: string(output), Err: err}
	}
	return nil
}

// hmmscanExec is a single hmmscan search of a proteome.
type hmmscanExec struct {
	// the path to hmmscan
	cmd string

	// the pressed database to search
	db string

	// the FASTA file of proteins
	in string

	// the domain table output
	domtab string

	// the plain text output, hmmscan's stdout
	out string
}

// Scan searches the proteins in fasta against db, writing a domain table
// to domtab and hmmscan's text output to txt.
//
// The search is skipped, and cached is true, when txt is not empty and the
// key stored beside it matches the current fasta and db. The text output
// is only complete once hmmscan is finished, so a non-empty txt without a
// key is searched again.
func Scan(ctx context.Context, hmmscan, db, fasta, domtab, txt string) (cached bool, err error) {
	h := &hmmscanExec{cmd: hmmscan, db: db, in: fasta, domtab: domtab, out: txt}

	key, err := h.key()
	if err != nil {
		return false, err
	}

	if h.cached(key) {
		return true, nil
	}

	if err := h.run(ctx); err != nil {
		os.Remove(h.out)
		os.Remove(h.domtab)
		return false, err
	}

	if err := os.WriteFile(keyFile(h.out), []byte(key+"\n"), 0666); err != nil {
		return false, errors.Wrapf(err, "failed to write %s", keyFile(h.out))
	}
	return false, nil
}

// key hashes the proteome and the database name
func (h *hmmscanExec) key() (string, error) {
	f, err := os.Open(h.in)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open %s", h.in)
	}
	defer f.Close()

	hasher := xxh3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", errors.Wrapf(err, "failed to read %s", h.in)
	}
	hasher.Write([]byte("\x00" + h.db))

	return strconv.FormatUint(hasher.Sum64(), 16), nil
}

func (h *hmmscanExec) cached(key string) bool {
	info, err := os.Stat(h.out)
	if err != nil || info.Size() == 0 {
		return false
	}
	if _, err := os.Stat(h.domtab); err != nil {
		return false
	}

	stored, err := os.ReadFile(keyFile(h.out))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(stored)) == key
}

// run calls the external hmmscan binary
func (h *hmmscanExec) run(ctx context.Context) error {
	path, err := exec.LookPath(h.cmd)
	if err != nil {
		return errors.Wrapf(err, "failed to find an hmmscan executable at %s", h.cmd)
	}

	out, err := os.Create(h.out)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", h.out)
	}
	defer out.Close()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "--domtblout", h.domtab, h.db, h.in)
	cmd.Stdout = out
	cmd.Stderr = &stderr

	log.WithFields(log.Fields{"fasta": h.in, "db": h.db}).Debug("running hmmscan")
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ExecError{Tool: "hmmscan", Stderr: stderr.String(), Err: err}
	}
	return out.Close()
}

func keyFile(txt string) string {
	return txt + ".xxh3"
}
