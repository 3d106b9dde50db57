package console_parser

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	log "viz-box/pkg/logger"
)

var logger = log.Build()

// EncodingProgress A progress report as emitted by Ffmpeg on stderr
type EncodingProgress struct {
	// Number of total frames processed
	Frames int64 `json:"frames"`
	// Number of frames processed each second
	Fps int `json:"fps"`
	// Quality target. Usually between 20 and 30
	Quality float32 `json:"quality"`
	// Estimated size of the converted file (kb)
	Size int64 `json:"size"`
	// Media time processed so far
	Time time.Duration `json:"time"`
	// Target bitrate
	Bitrate string `json:"bitrate"`
	// Encoding speed. A "2" means 1 second of encoding would be a 2 seconds playback
	Speed float32 `json:"speed"`
}

// Percent returns the completion ratio against the target media duration,
// clamped to [0, 100]. A non-positive target yields 0.
func (p *EncodingProgress) Percent(target time.Duration) float64 {
	if target <= 0 {
		return 0
	}
	pct := 100 * float64(p.Time) / float64(target)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ParseOutput reads Ffmpeg stderr until EOF or context cancellation, emitting
// an EncodingProgress on progressChan for every progress line encountered.
// The returned string contains the last few log lines, for error reporting.
func ParseOutput(ctx *context.Context, readStream *io.ReadCloser, progressChan chan *EncodingProgress, errorChan chan error) string {
	scanner := bufio.NewScanner(*readStream)
	scanner.Split(scanFfmpegOutput)
	// Store the last n ffmpeg lines
	stack := NewRingLogBuffer(5)
	for scanner.Scan() {
		// Check if the operation must be cancelled
		select {
		case <-(*ctx).Done():
			return stack.String()
		default:
			// Continue
		}
		if scanner.Err() != nil {
			errorChan <- scanner.Err()
		}
		line := scanner.Text()
		stack.Push(line)
		// A progress line begins with "frame= xxx". Discard the line otherwise
		if !strings.HasPrefix(line, "f") {
			continue
		}
		progress, err := parseProgress(line)
		if err != nil {
			logger.Warnf("[Console parser] :: progress line \"%s\" ignored", line)
			continue
		}
		progressChan <- progress
	}
	return stack.String()
}

// scanFfmpegOutput A modified version of a traditional scanLine. Ffmpeg
// rewrites its progress line in place using a bare \r, so \r is a line
// terminator too.
func scanFfmpegOutput(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		// We have a full newline-terminated line.
		return i + 1, dropCR(data[0:i]), nil
	}
	// If we're at EOF, we have a final, non-terminated line. Return it.
	if atEOF {
		return len(data), dropCR(data), nil
	}
	if i := bytes.IndexByte(data, '\r'); i >= 0 {
		return i + 1, dropCR(data[0:i]), nil
	}
	return 0, nil, nil
}

// dropCR drops a terminal \r from the data.
func dropCR(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\r' {
		return data[0 : len(data)-1]
	}
	return data
}

// Parse a progress line in the following format :
// frame=   85 fps=0.0 q=28.0 size=       0kB time=00:00:01.04 bitrate=   0.4kbits/s speed=   2x
func parseProgress(progressLine string) (*EncodingProgress, error) {
	// Collapse the padding Ffmpeg inserts after every "=" so the line splits
	// cleanly on single spaces
	blanks := regexp.MustCompile(`=\s+`)
	components := strings.Split(blanks.ReplaceAllString(strings.TrimSpace(progressLine), "="), " ")
	p := &EncodingProgress{}
	for _, c := range components {
		err, key, value := parseComponentString(c)
		if err != nil {
			return nil, err
		}
		switch key {
		case "frame":
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				p.Frames = n
			}
		case "fps":
			if n, err := strconv.ParseInt(value, 10, 32); err == nil {
				p.Fps = int(n)
			}
		case "q":
			if n, err := strconv.ParseFloat(value, 32); err == nil {
				p.Quality = float32(n)
			}
		case "size":
			if s, err := parseSize(value); err == nil {
				p.Size = s
			}
		case "bitrate":
			p.Bitrate = value
		case "time":
			if d, err := parseClock(value); err == nil {
				p.Time = d
			}
		case "speed":
			if n, err := strconv.ParseFloat(strings.TrimSuffix(value, "x"), 32); err == nil {
				p.Speed = float32(n)
			}
		}
	}
	return p, nil
}

// Parse an Ffmpeg "HH:MM:SS.cc" clock value into a duration
func parseClock(raw string) (time.Duration, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock value : %s", raw)
	}
	hours, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, err
	}
	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))
	return d, nil
}

// Parse a string with format "key=value" into a key/value pair
func parseComponentString(str string) (error error, key string, value string) {
	pair := strings.Split(str, "=")
	if len(pair) != 2 {
		return fmt.Errorf("invalid pair : %s", pair), "", ""
	}
	return nil, pair[0], pair[1]
}

// Parse a "12kb" string into a Kilo based size
func parseSize(rawSize string) (int64, error) {
	sizeRegex := regexp.MustCompile(`(\d+)([a-zA-Z]+)`)
	units := []string{"kb", "mb", "gb"}
	matches := sizeRegex.FindStringSubmatch(rawSize)
	if len(matches) != 3 {
		return 0, fmt.Errorf("invalid format")
	}
	unit := strings.ToLower(matches[2])
	size, err := strconv.ParseInt(strings.ToLower(matches[1]), 10, 64)
	if err != nil {
		return 0, err
	}
	multiplier := getSizeMultiplier(unit, units)
	if multiplier == -1 {
		return 0, fmt.Errorf(`unknown size unit "%s"`, unit)
	}
	return size * multiplier, nil
}

// Return a multiplier to convert any unit into kb
func getSizeMultiplier(element string, data []string) int64 {
	for k, v := range data {
		if element == v {
			return int64(math.Pow(float64(1024), float64(k)))
		}
	}
	return -1 //not found.
}
