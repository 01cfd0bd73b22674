// Package logger provides the per-entry structured log sink described in
// spec.md §4.4: a socket handler when a server PID file is present under
// tasks/, otherwise an append-only file handler, with stdout echo in
// non-GUI mode. Modeled on the teacher's stream-collector PID-file
// discovery (transport/collect.go) and its glog-everywhere logging style.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package logger

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang/glog"
)

const (
	socketPIDFile = "nxlogger.pid"
	logFileName   = "nxlogger.log"
	timeLayout    = "2006-01-02 15:04:05"
)

// Sink is the output side of a Logger: a file handler or a socket handler.
type Sink interface {
	Write(line string) error
	Close() error
}

// fileSink appends timestamped lines to tasks/nxlogger.log.
type fileSink struct {
	mu sync.Mutex
	f  *os.File
}

func newFileSink(tasksDir string) (*fileSink, error) {
	f, err := os.OpenFile(filepath.Join(tasksDir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &fileSink{f: f}, nil
}

func (s *fileSink) Write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.f, "%s %s\n", time.Now().Format(timeLayout), line)
	return err
}

func (s *fileSink) Close() error { return s.f.Close() }

// socketSink streams log lines to a TCP logging socket on localhost,
// discovered the way the teacher discovers its stream collector: a
// PID file under tasks/ signals that a listener is up.
type socketSink struct {
	mu   sync.Mutex
	conn net.Conn
	w    *bufio.Writer
}

func newSocketSink(addr string) (*socketSink, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, err
	}
	return &socketSink{conn: conn, w: bufio.NewWriter(conn)}, nil
}

func (s *socketSink) Write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.WriteString(line + "\n"); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *socketSink) Close() error { return s.conn.Close() }

// Logger is a per-entry logger keyed by "<label>/<sample>_<scan>['<entry>']".
type Logger struct {
	key    string
	sink   Sink
	echo   bool // echo to stdout in non-GUI mode
}

// Open constructs the logger for one entry key, choosing the sink per
// spec.md §4.4: socket if tasks/nxlogger.pid exists, else file.
func Open(tasksDir, key string, guiMode bool) (*Logger, error) {
	if err := os.MkdirAll(tasksDir, 0o755); err != nil {
		return nil, err
	}
	var (
		sink Sink
		err  error
	)
	if addr, ok := socketAddr(tasksDir); ok {
		sink, err = newSocketSink(addr)
	}
	if sink == nil {
		sink, err = newFileSink(tasksDir)
	}
	if err != nil {
		return nil, err
	}
	return &Logger{key: key, sink: sink, echo: !guiMode}, nil
}

// socketAddr reads tasks/nxlogger.pid; presence of the file is the
// discovery signal and its whole content is used as the address. A
// missing or empty file reports no socket; there is no default address.
func socketAddr(tasksDir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(tasksDir, socketPIDFile))
	if err != nil {
		return "", false
	}
	addr := string(data)
	if addr == "" {
		return "", false
	}
	return addr, true
}

func (l *Logger) line(level, format string, args ...interface{}) string {
	return fmt.Sprintf("[%s] %s %s", level, l.key, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	line := l.line("INFO", format, args...)
	glog.Infoln(line)
	l.emit(line)
}

func (l *Logger) Warning(format string, args ...interface{}) {
	line := l.line("WARN", format, args...)
	glog.Warningln(line)
	l.emit(line)
}

func (l *Logger) Error(format string, args ...interface{}) {
	line := l.line("ERROR", format, args...)
	glog.Errorln(line)
	l.emit(line)
}

func (l *Logger) emit(line string) {
	if err := l.sink.Write(line); err != nil {
		glog.Warningf("logger: sink write failed for %s: %v", l.key, err)
	}
	if l.echo {
		fmt.Println(line)
	}
}

func (l *Logger) Close() error { return l.sink.Close() }

// Key builds the "<label>/<sample>_<scan>['<entry>']" logger key from
// spec.md §4.4.
func Key(label, sample, scan, entry string) string {
	if entry == "" {
		return fmt.Sprintf("%s/%s_%s", label, sample, scan)
	}
	return fmt.Sprintf("%s/%s_%s['%s']", label, sample, scan, entry)
}
