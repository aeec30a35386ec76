package ingest

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

// File is the raw content of one import file.
type File struct {
	Name string
	Data []byte
}

// ReadFiles loads every path concurrently. Results keep the order of paths.
// The first failure cancels the rest and is returned.
func ReadFiles(ctx context.Context, paths []string) ([]File, error) {
	files := make([]File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			files[i] = File{Name: path, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// ParseFiles stages each file and merges the results. Any file failing
// structurally fails the whole set.
func ParseFiles(files []File, opts Options) (*Staged, error) {
	batches := make([]*Staged, 0, len(files))
	for _, f := range files {
		s, err := ParseCSV(f.Name, f.Data, opts)
		if err != nil {
			return nil, err
		}
		batches = append(batches, s)
	}
	return MergeStaged(batches...), nil
}
