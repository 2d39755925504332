package usecase

import (
	"context"
	"fmt"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
	"github.com/ducktyper-ai/quackverse-sub003/internal/core/ports"
)

type ProbeFileUseCase struct {
	files ports.FileService
}

func NewProbeFileUseCase(files ports.FileService) *ProbeFileUseCase {
	return &ProbeFileUseCase{files: files}
}

// Probe stats the source and resolves its format. An explicit hint wins;
// otherwise the format is inferred from the file extension, with unknown
// extensions passing through unchanged.
func (uc *ProbeFileUseCase) Probe(ctx context.Context, path string, hint domain.Format) (domain.FileDescriptor, error) {
	stat, err := uc.files.Stat(ctx, path)
	if err != nil {
		return domain.FileDescriptor{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !stat.Exists {
		return domain.FileDescriptor{}, domain.WrapError(domain.ErrSourceNotFound, "probe file", fmt.Errorf("%s does not exist", path))
	}
	if stat.IsDir {
		return domain.FileDescriptor{}, domain.WrapError(domain.ErrInvalidInput, "probe file", fmt.Errorf("%s is a directory", path))
	}

	format := hint
	if format == "" {
		format = domain.FormatForPath(path)
	}
	return domain.FileDescriptor{
		Path:     path,
		Format:   format,
		Size:     stat.Size,
		Modified: stat.Modified,
	}, nil
}
