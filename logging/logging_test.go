package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/sarchlab/fpgapr/logging"
)

func TestLoggerLevelsWriteExpectedEntries(t *testing.T) {
	cases := []struct {
		name    string
		log     func(l logging.Logger)
		wantSub string
	}{
		{"info", func(l logging.Logger) { l.Info("placed all blocks", logging.Fields{"itry": 3}) }, "placed all blocks"},
		{"warn", func(l logging.Logger) { l.Warn("router did not converge", nil) }, "router did not converge"},
		{"error", func(l logging.Logger) { l.Error("bad architecture file", logging.Fields{"path": "x.json"}) }, "bad architecture file"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			l := logging.New(buf, logrus.DebugLevel)

			tc.log(l)

			assert.Contains(t, buf.String(), tc.wantSub)
		})
	}
}

func TestWithMergesFieldsIntoEveryEntry(t *testing.T) {
	buf := &bytes.Buffer{}
	l := logging.New(buf, logrus.DebugLevel)

	stage := l.With(logging.Fields{"stage": "route"})
	stage.Info("starting iteration", logging.Fields{"itry": 1})

	out := buf.String()
	assert.True(t, strings.Contains(out, "stage=route"))
	assert.True(t, strings.Contains(out, "itry=1"))
}

func TestDiscardDropsEntries(t *testing.T) {
	l := logging.Discard()
	assert.NotPanics(t, func() {
		l.Info("anything", logging.Fields{"x": 1})
	})
}
