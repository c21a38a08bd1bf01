package utils

import "strings"

// ChunkLines joins lines into messages of at most size lines each, so long
// listings can be sent across several Discord messages.
func ChunkLines(lines []string, size int) []string {
	if size <= 0 {
		size = 20
	}
	chunks := make([]string, 0, (len(lines)+size-1)/size)
	for start := 0; start < len(lines); start += size {
		end := start + size
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, strings.Join(lines[start:end], "\n"))
	}
	return chunks
}
