package console_parser

import "strings"

// A string ring buffer, retains the last size lines of FFMPEG log
type ringLogBuffer struct {
	// proper string buffer
	content []string
	// total array size
	size int
	// Index of the next line to insert
	currentIndex int
}

func NewRingLogBuffer(size int) *ringLogBuffer {
	return &ringLogBuffer{size: size, content: make([]string, size)}
}

func (rlb *ringLogBuffer) Push(str string) {
	rlb.content[rlb.currentIndex] = str
	rlb.currentIndex = (rlb.currentIndex + 1) % rlb.size
}

// String joins the retained lines, oldest first, skipping slots never written
func (rlb *ringLogBuffer) String() string {
	lines := make([]string, 0, rlb.size)
	for i := 0; i < rlb.size; i++ {
		line := rlb.content[(rlb.currentIndex+i)%rlb.size]
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
