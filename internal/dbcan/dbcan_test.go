package dbcan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/db.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("HMMER3/f\nNAME  GH5.hmm\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"found", "/db.txt", 0},
		{"missing", "/other.txt", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(dir, tt.name+".txt")
			err := Download(context.Background(), srv.Client(), srv.URL+tt.path, dest)

			if tt.wantStatus == 0 {
				if err != nil {
					t.Fatal(err)
				}
				got, _ := os.ReadFile(dest)
				if string(got) != "HMMER3/f\nNAME  GH5.hmm\n" {
					t.Errorf("downloaded %q", got)
				}
				return
			}

			var herr *HTTPError
			if !errors.As(err, &herr) || herr.Status != tt.wantStatus {
				t.Fatalf("Download() error = %v, want an *HTTPError %d", err, tt.wantStatus)
			}
			if _, err := os.Stat(dest); !os.IsNotExist(err) {
				t.Error("Download() left a file after failing")
			}
		})
	}

	// no partial files remain
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("%d files in the download dir, want 1", len(entries))
	}
}

func TestFetch(t *testing.T) {
	dir := t.TempDir()

	// an existing release isn't downloaded again
	dest := filepath.Join(dir, Filename("v10"))
	if err := os.WriteFile(dest, []byte("HMMER3/f\n"), 0666); err != nil {
		t.Fatal(err)
	}
	got, err := Fetch(context.Background(), nil, "v10", dir)
	if err != nil || got != dest {
		t.Errorf("Fetch() = %q, %v, want %q", got, err, dest)
	}

	if _, err := Fetch(context.Background(), nil, "v3", dir); err == nil {
		t.Error("Fetch() expected an error for an unknown release")
	}
}
