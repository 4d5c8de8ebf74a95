package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hepframe/hepframe/internal/schema"
)

// ErrReadOnly is returned by writes to a FileSystemRepository.
var ErrReadOnly = errors.New("layout directory is read-only")

// extensions in lookup order: a .yaml file shadows a .proto of the same
// version.
var extensions = []struct {
	ext    string
	format schema.Format
}{
	{".yaml", schema.FormatYaml},
	{".proto", schema.FormatProtobuf},
}

// FileSystemRepository serves layouts from root/<dataset>/v<version>.<ext>.
// Everything on disk is active; adding a layout means adding a file.
type FileSystemRepository struct {
	root string
}

func NewFileSystemRepository(root string) *FileSystemRepository {
	return &FileSystemRepository{root: root}
}

func (r *FileSystemRepository) path(ref schema.Ref, ext string) string {
	return filepath.Join(r.root, ref.Dataset, "v"+strconv.Itoa(ref.Version)+ext)
}

func (r *FileSystemRepository) Create(_ context.Context, def *schema.Definition) error {
	ext := ".yaml"
	if def.Format == schema.FormatProtobuf {
		ext = ".proto"
	}
	return fmt.Errorf("%w: add %s instead", ErrReadOnly, r.path(def.Ref(), ext))
}

func (r *FileSystemRepository) SetState(_ context.Context, ref schema.Ref, _ schema.State) error {
	return fmt.Errorf("%w: cannot change state of %s", ErrReadOnly, ref)
}

func (r *FileSystemRepository) Get(_ context.Context, ref schema.Ref) (*schema.Definition, error) {
	var found *schema.Definition
	for _, e := range extensions {
		src, err := os.ReadFile(r.path(ref, e.ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read layout %s: %w", ref, err)
		}
		if found != nil {
			slog.Warn("[Layouts] Ignoring shadowed definition", "dataset", ref.Dataset, "version", ref.Version, "file", r.path(ref, e.ext))
			continue
		}
		info, _ := os.Stat(r.path(ref, e.ext))
		found = &schema.Definition{
			ID:          ref.Dataset + "-" + strconv.Itoa(ref.Version),
			Dataset:     ref.Dataset,
			Version:     ref.Version,
			Format:      e.format,
			Source:      src,
			Fingerprint: schema.Fingerprint(src),
			State:       schema.StateActive,
		}
		if info != nil {
			found.CreatedAt = info.ModTime().UTC()
		}
	}
	if found == nil {
		return nil, schema.ErrNotFound
	}
	return found, nil
}

func (r *FileSystemRepository) List(ctx context.Context, dataset string) ([]*schema.Definition, error) {
	datasets := []string{dataset}
	if dataset == "" {
		entries, err := os.ReadDir(r.root)
		if errors.Is(err, fs.ErrNotExist) {
			return []*schema.Definition{}, nil
		}
		if err != nil {
			return nil, err
		}
		datasets = datasets[:0]
		for _, e := range entries {
			if e.IsDir() {
				datasets = append(datasets, e.Name())
			}
		}
	}

	out := []*schema.Definition{}
	for _, ds := range datasets {
		versions, err := r.versions(ds)
		if err != nil {
			return nil, err
		}
		for _, v := range versions {
			d, err := r.Get(ctx, schema.Ref{Dataset: ds, Version: v})
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
	}
	sortDefinitions(out)
	return out, nil
}

// versions lists the distinct versions with a definition file for dataset.
func (r *FileSystemRepository) versions(dataset string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(r.root, dataset))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var out []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "v") {
			continue
		}
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".proto" {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSuffix(name[1:], ext))
		if err != nil || v < 1 || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}
