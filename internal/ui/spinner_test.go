package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestLineSpinner(t *testing.T) {
	var buf bytes.Buffer
	s := NewWaitingSpinner("waiting")
	s.out = &buf

	s.Start()
	s.Start()
	s.Error("relay gone")
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "waiting") || !strings.Contains(out, "relay gone") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "\r\033[K") {
		t.Error("line was not cleared on stop")
	}
}

func TestLineSpinnerStopWithoutStart(t *testing.T) {
	s := NewConnectionSpinner("never started")
	s.out = &bytes.Buffer{}
	s.Stop()
	s.Stop()
}
