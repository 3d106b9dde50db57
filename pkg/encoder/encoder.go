package encoder

import (
	"context"
	"fmt"
	"os/exec"

	console_parser "viz-box/pkg/encoder/console-parser"
)

type Encoder struct {
	// FFMPEG argument vector to execute
	args []string
	// Channel to send progress into
	PChan chan *console_parser.EncodingProgress
	// Channel to send errors into
	EChan chan error
	// Encoder context
	Ctx context.Context
	// Function to execute to Cancel the encoding process
	Cancel context.CancelFunc
}

// NewEncoder Build a new FFMPEG encoder initialized with the given arguments
func NewEncoder(ctx *context.Context, args []string) *Encoder {
	eCtx, cancel := context.WithCancel(*ctx)
	return &Encoder{
		args:   args,
		PChan:  make(chan *console_parser.EncodingProgress),
		EChan:  make(chan error),
		Ctx:    eCtx,
		Cancel: cancel,
	}
}

// Start Run the FFMPEG process, streaming progress into PChan until the
// process exits or the context is cancelled
func (e *Encoder) Start() {
	defer e.Cancel()
	cmd := exec.CommandContext(e.Ctx, "ffmpeg", e.args...)

	// FFMPEG writes progress on stderr
	stderr, err := cmd.StderrPipe()
	if err != nil {
		e.EChan <- err
		return
	}
	if err := cmd.Start(); err != nil {
		e.EChan <- err
		return
	}
	// The parser returns the last log lines, the only useful context when
	// the process dies
	tail := console_parser.ParseOutput(&e.Ctx, &stderr, e.PChan, e.EChan)
	if err := cmd.Wait(); err != nil {
		e.EChan <- fmt.Errorf("ffmpeg exited : %w : %s", err, tail)
	}
}

// Args The argument vector this encoder will run
func (e *Encoder) Args() []string {
	return append([]string(nil), e.args...)
}
