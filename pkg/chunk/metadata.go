package chunk

// FileMetadata describes the outcome of a split.
type FileMetadata struct {
	FileSize    int64 `json:"file_size"`
	TotalChunks int   `json:"total_chunks"`
	ChunkSize   int64 `json:"chunk_size"`
}

// NewFileMetadata computes the layout of a file of fileSize bytes cut into
// chunks of chunkSize bytes. An empty file still has one (empty) chunk.
// chunkSize must be positive.
func NewFileMetadata(fileSize, chunkSize int64) FileMetadata {
	total := fileSize / chunkSize
	if fileSize%chunkSize != 0 {
		total++
	}
	if total == 0 {
		total = 1
	}
	return FileMetadata{
		FileSize:    fileSize,
		TotalChunks: int(total),
		ChunkSize:   chunkSize,
	}
}

// Offset returns the byte offset of chunk i in the original file.
func (m FileMetadata) Offset(i int) int64 {
	return int64(i) * m.ChunkSize
}

// ChunkLength returns the number of bytes chunk i holds.
func (m FileMetadata) ChunkLength(i int) int64 {
	remaining := m.FileSize - m.Offset(i)
	switch {
	case remaining <= 0:
		return 0
	case remaining < m.ChunkSize:
		return remaining
	default:
		return m.ChunkSize
	}
}
