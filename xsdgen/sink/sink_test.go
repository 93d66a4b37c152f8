package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "schema path", path: "ReleaseQ16/MagickScript.xsd"},
		{name: "single file", path: "MagickScript.xsd"},
		{name: "empty", path: "", wantErr: "empty"},
		{name: "leading slash", path: "/abs/MagickScript.xsd", wantErr: "absolute paths not allowed"},
		{name: "drive letter", path: "C:/out/MagickScript.xsd", wantErr: "absolute paths not allowed"},
		{name: "backslash", path: `ReleaseQ8\MagickScript.xsd`, wantErr: "forward slashes"},
		{name: "inner traversal", path: "ReleaseQ8/../x.xsd", wantErr: "path traversal not allowed"},
		{name: "leading traversal", path: "../x.xsd", wantErr: "path traversal not allowed"},
		{name: "just dotdot", path: "..", wantErr: "path traversal not allowed"},
		{name: "dot prefix", path: "./x.xsd", wantErr: "not clean"},
		{name: "double slash", path: "a//x.xsd", wantErr: "not clean"},
		{name: "trailing slash", path: "a/", wantErr: "not clean"},
		{name: "dots in name", path: "a/x..xsd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidatePath(%q) error = %v", tt.path, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidatePath(%q) expected error containing %q", tt.path, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidatePath(%q) error = %v, want %q", tt.path, err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidPath) {
				t.Errorf("error should be marked ErrInvalidPath")
			}
		})
	}
}

func TestMemorySink(t *testing.T) {
	ctx := context.Background()

	t.Run("write and get", func(t *testing.T) {
		s := NewMemorySink()
		content := []byte("<xs:schema/>")
		if err := s.WriteFile(ctx, "ReleaseQ8/MagickScript.xsd", content); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		content[0] = 'X'
		if got := string(s.Get("ReleaseQ8/MagickScript.xsd")); got != "<xs:schema/>" {
			t.Errorf("Get() = %q, stored content should be a copy", got)
		}
		if s.Get("missing.xsd") != nil {
			t.Error("Get() of missing path should be nil")
		}
	})

	t.Run("paths sorted", func(t *testing.T) {
		s := NewMemorySink()
		for _, p := range []string{"ReleaseQ16/MagickScript.xsd", "ReleaseQ8/MagickScript.xsd"} {
			if err := s.WriteFile(ctx, p, nil); err != nil {
				t.Fatal(err)
			}
		}
		got := s.Paths()
		want := []string{"ReleaseQ16/MagickScript.xsd", "ReleaseQ8/MagickScript.xsd"}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("Paths() = %v, want %v", got, want)
		}
	})

	t.Run("invalid path", func(t *testing.T) {
		s := NewMemorySink()
		if err := s.WriteFile(ctx, "../escape.xsd", nil); err == nil {
			t.Error("expected error for traversal")
		}
		if s.Len() != 0 {
			t.Error("nothing should be stored")
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		s := NewMemorySink()
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := s.WriteFile(ctx, "x.xsd", nil); !errors.Is(err, context.Canceled) {
			t.Errorf("WriteFile() error = %v, want context.Canceled", err)
		}
	})
}

func TestMemorySink_Concurrent(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := fmt.Sprintf("ReleaseQ%d/MagickScript.xsd", i)
			if err := s.WriteFile(ctx, p, []byte(p)); err != nil {
				t.Errorf("WriteFile() error = %v", err)
			}
			_ = s.Get(p)
		}(i)
	}
	wg.Wait()

	if s.Len() != 20 {
		t.Errorf("Len() = %d, want 20", s.Len())
	}
}

func TestFilesystemSink(t *testing.T) {
	ctx := context.Background()

	t.Run("writes nested file", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)

		if err := s.WriteFile(ctx, "ReleaseQ16/MagickScript.xsd", []byte("schema")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		got, err := os.ReadFile(filepath.Join(root, "ReleaseQ16", "MagickScript.xsd"))
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(got) != "schema" {
			t.Errorf("ReadFile() = %q, want %q", got, "schema")
		}

		info, err := os.Stat(filepath.Join(root, "ReleaseQ16", "MagickScript.xsd"))
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0644 {
			t.Errorf("mode = %v, want 0644", info.Mode().Perm())
		}
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)

		for _, content := range []string{"first", "second"} {
			if err := s.WriteFile(ctx, "MagickScript.xsd", []byte(content)); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
		}
		got, _ := os.ReadFile(filepath.Join(root, "MagickScript.xsd"))
		if string(got) != "second" {
			t.Errorf("ReadFile() = %q, want %q", got, "second")
		}
	})

	t.Run("zero mode defaults", func(t *testing.T) {
		root := t.TempDir()
		s := &FilesystemSink{Root: root}
		if err := s.WriteFile(ctx, "a.xsd", []byte("x")); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	})

	t.Run("rejects traversal", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(filepath.Join(root, "out"))
		if err := s.WriteFile(ctx, "../escape.xsd", []byte("x")); err == nil {
			t.Fatal("expected error")
		}
		if _, err := os.Stat(filepath.Join(root, "escape.xsd")); !os.IsNotExist(err) {
			t.Error("file escaped the root")
		}
	})

	t.Run("canceled context writes nothing", func(t *testing.T) {
		root := t.TempDir()
		s := NewFilesystemSink(root)
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		if err := s.WriteFile(ctx, "a.xsd", []byte("x")); err == nil {
			t.Fatal("expected error")
		}
		if _, err := os.Stat(filepath.Join(root, "a.xsd")); !os.IsNotExist(err) {
			t.Error("file should not exist")
		}
	})
}

func TestFilesystemSink_NoTempFilesLeft(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemSink(root)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := fmt.Sprintf("ReleaseQ%d/MagickScript.xsd", i%2*8+8)
			if err := s.WriteFile(ctx, p, []byte("content")); err != nil {
				t.Errorf("WriteFile() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".magickxsd-") {
			t.Errorf("temp file left behind: %s", p)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
