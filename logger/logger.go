// Package logger implements LogSink (SPEC_FULL.md §1, §6.5): rolling daily
// log files via sirupsen/logrus and gopkg.in/natefinch/lumberjack.v2, with
// an opt-in console mirror.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logrus logger writing to dir/<prefix>.log, rotated daily and
// capped at maxFile retained backups (§6.5 "Rolling daily files, prefix =
// node name ... at most max_file retained"). prefix is the launched node's
// name, or "all" when multiple roles run in one process (§6.5).
func New(dir, prefix string, maxFile int, console bool) (*logrus.Logger, func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(dir, prefix+".log"),
		MaxAge:     1, // days; combined with the daily-rotation timer below
		MaxBackups: maxFile,
		Compress:   false,
	}

	var out io.Writer = lj
	if console {
		out = io.MultiWriter(lj, os.Stdout)
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	stop := startDailyRotation(lj)
	return log, stop, nil
}

// startDailyRotation forces lj to roll over at the next local midnight and
// every 24h after, independent of size (§6.5 "daily rotation"). lumberjack
// only rotates on size by default, so the node supplies the day boundary.
func startDailyRotation(lj *lumberjack.Logger) func() {
	stop := make(chan struct{})
	go func() {
		for {
			now := time.Now()
			next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
			timer := time.NewTimer(next.Sub(now))
			select {
			case <-timer.C:
				_ = lj.Rotate()
			case <-stop:
				timer.Stop()
				return
			}
		}
	}()
	return func() { close(stop) }
}
