package chunk

import (
	"context"
	"fmt"
	"io"

	"github.com/ligustah/chunkset/pkg/fsio"
)

// split cuts opts.InFile into chunks in opts.OutDir. Chunks are written in
// ascending order and each one is closed before the next is created. On
// failure the chunks written so far are left in place.
func split(ctx context.Context, fsys fsio.FS, opts SplitOptions) (FileMetadata, error) {
	obs := observerOrNop(opts.Observer)

	size, err := fsys.Size(ctx, opts.InFile)
	if err != nil {
		return FileMetadata{}, ioError("split", opts.InFile, -1, err)
	}
	meta := NewFileMetadata(size, opts.ChunkSize)

	in, err := fsys.Open(ctx, opts.InFile)
	if err != nil {
		return FileMetadata{}, ioError("split", opts.InFile, -1, err)
	}
	defer in.Close()

	if err := fsys.MkdirAll(ctx, opts.OutDir); err != nil {
		return FileMetadata{}, ioError("split", opts.OutDir, -1, err)
	}

	buf := make([]byte, bufferLen(opts.BufferSize, opts.ChunkSize))
	for i := 0; i < meta.TotalChunks; i++ {
		if err := ctx.Err(); err != nil {
			return FileMetadata{}, err
		}

		obs.ChunkStarted()
		length := meta.ChunkLength(i)
		if err := writeChunk(ctx, fsys, in, opts.InFile, fsys.Join(opts.OutDir, Name(i)), i, length, buf); err != nil {
			obs.ChunkFailed()
			return FileMetadata{}, err
		}
		obs.ChunkCompleted(length)
	}

	return meta, nil
}

// writeChunk copies exactly length bytes from in to a new chunk file.
func writeChunk(ctx context.Context, fsys fsio.FS, in io.Reader, inFile, name string, index int, length int64, buf []byte) error {
	out, err := fsys.Create(ctx, name)
	if err != nil {
		return ioError("split", name, index, err)
	}

	for remaining := length; remaining > 0; {
		p := buf
		if int64(len(p)) > remaining {
			p = p[:remaining]
		}

		n, err := fsio.ReadFull(in, p)
		if err != nil {
			out.Close()
			return ioError("split", inFile, index, err)
		}
		if n < len(p) {
			out.Close()
			return ioError("split", inFile, index,
				fmt.Errorf("input ended %d bytes early: %w", remaining-int64(n), io.ErrUnexpectedEOF))
		}

		if err := fsio.WriteAll(out, p); err != nil {
			out.Close()
			return ioError("split", name, index, err)
		}
		remaining -= int64(n)
	}

	if err := out.Close(); err != nil {
		return ioError("split", name, index, err)
	}
	return nil
}
