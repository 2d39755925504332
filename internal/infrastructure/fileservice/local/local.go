package local

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

// Service is the local-disk file service. Relative paths resolve against
// the base directory so API and worker processes sharing a volume agree on
// storage keys; absolute paths are used as given.
type Service struct {
	basePath string
}

func New(basePath string) (*Service, error) {
	if basePath == "" {
		basePath = "./data/storage"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Service{basePath: basePath}, nil
}

func (s *Service) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.basePath, path)
}

// Stat never treats a missing file as an error; absence is reported through
// FileStat.Exists.
func (s *Service) Stat(_ context.Context, path string) (domain.FileStat, error) {
	info, err := os.Stat(s.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.FileStat{}, nil
		}
		return domain.FileStat{}, fmt.Errorf("stat file: %w", err)
	}
	return domain.FileStat{
		Exists:   true,
		IsDir:    info.IsDir(),
		Size:     info.Size(),
		Modified: info.ModTime(),
	}, nil
}

func (s *Service) ReadText(_ context.Context, path string) (string, error) {
	raw, err := os.ReadFile(s.resolve(path))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("read file: %s is not valid utf-8", path)
	}
	return string(raw), nil
}

func (s *Service) ReadBinary(_ context.Context, path string) ([]byte, error) {
	raw, err := os.ReadFile(s.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return raw, nil
}

// WriteText writes content as-is. The parent directory must already exist;
// directory creation is an explicit, separately-failing step for callers.
func (s *Service) WriteText(_ context.Context, path, content string) (int64, error) {
	if err := os.WriteFile(s.resolve(path), []byte(content), 0o644); err != nil {
		return 0, fmt.Errorf("write file: %w", err)
	}
	return int64(len(content)), nil
}

func (s *Service) Save(_ context.Context, path string, data io.Reader) error {
	f, err := os.Create(s.resolve(path))
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *Service) MkdirAll(_ context.Context, path string) error {
	if err := os.MkdirAll(s.resolve(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return nil
}

// FindFiles lists files under dir whose base name matches the glob pattern.
// Results are absolute-resolved paths in lexical order.
func (s *Service) FindFiles(_ context.Context, dir, pattern string, recursive bool) ([]string, error) {
	root := s.resolve(dir)
	if pattern == "" {
		pattern = "*"
	}

	var files []string
	if !recursive {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, fmt.Errorf("find files: %w", err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			files = append(files, m)
		}
		sort.Strings(files)
		return files, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
