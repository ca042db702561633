package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// LineSpinner animates one terminal line until stopped. It is for plain
// blocking commands; the watch dashboard uses a bubbletea spinner instead.
type LineSpinner struct {
	out     io.Writer
	message string
	frames  spinner.Spinner

	started atomic.Bool
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newLineSpinner(frames spinner.Spinner, message string) *LineSpinner {
	return &LineSpinner{
		out:     os.Stderr,
		message: message,
		frames:  frames,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// NewConnectionSpinner is used while dialing or fetching.
func NewConnectionSpinner(message string) *LineSpinner {
	return newLineSpinner(spinner.Globe, message)
}

// NewWaitingSpinner is used while waiting on the relay to push something.
func NewWaitingSpinner(message string) *LineSpinner {
	return newLineSpinner(spinner.Points, message)
}

func (s *LineSpinner) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.frames.FPS)
		defer ticker.Stop()
		for i := 0; ; i++ {
			frame := s.frames.Frames[i%len(s.frames.Frames)]
			fmt.Fprintf(s.out, "\r%s %s", SpinnerStyle.Render(frame), s.message)
			select {
			case <-s.stop:
				fmt.Fprint(s.out, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop clears the line. It waits for the animation to finish so later
// output is not overwritten. Safe to call more than once.
func (s *LineSpinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
		if s.started.Load() {
			<-s.done
		}
	})
}

func (s *LineSpinner) Error(message string) {
	s.Stop()
	fmt.Fprintf(s.out, "%s %s\n", ErrorStyle.Render(IconError), message)
}

// RunConnectionSpinner starts a connection spinner and returns its Stop.
func RunConnectionSpinner(message string) func() {
	sp := NewConnectionSpinner(message)
	sp.Start()
	return sp.Stop
}
