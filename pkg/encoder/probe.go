package encoder

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// GetDuration Probe the duration of a media file
func GetDuration(path string) (time.Duration, error) {
	// ffprobe -v error -show_entries format=duration -of default=noprint_wrappers=1:nokey=1 input.mp4
	args := strings.Split("-v error -show_entries format=duration -of default=noprint_wrappers=1:nokey=1", " ")
	args = append(args, path)
	out, err := exec.Command("ffprobe", args...).Output()
	if err != nil {
		return 0, err
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// VideoInfo Basic properties of the first video stream
type VideoInfo struct {
	Width  int
	Height int
	Fps    float64
}

// GetVideoInfo Probe width, height and frame rate of a media file
func GetVideoInfo(path string) (*VideoInfo, error) {
	// ffprobe -v error -select_streams v:0 -show_entries stream=width,height,avg_frame_rate -of csv=p=0 input.mp4
	args := strings.Split("-v error -select_streams v:0 -show_entries stream=width,height,avg_frame_rate -of csv=p=0", " ")
	args = append(args, path)
	out, err := exec.Command("ffprobe", args...).Output()
	if err != nil {
		return nil, err
	}
	return parseVideoInfo(strings.TrimSpace(string(out)))
}

// Parse a "width,height,num/den" csv line as emitted by ffprobe
func parseVideoInfo(line string) (*VideoInfo, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 3 {
		return nil, fmt.Errorf(`invalid ffprobe output "%s"`, line)
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, err
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, err
	}
	fps, err := parseFrameRate(parts[2])
	if err != nil {
		return nil, err
	}
	return &VideoInfo{Width: width, Height: height, Fps: fps}, nil
}

// Frame rates come out of ffprobe as a "num/den" rational
func parseFrameRate(rate string) (float64, error) {
	parts := strings.Split(rate, "/")
	if len(parts) != 2 {
		return strconv.ParseFloat(rate, 64)
	}
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, err
	}
	if den == 0 {
		return 0, fmt.Errorf(`invalid frame rate "%s"`, rate)
	}
	return num / den, nil
}
