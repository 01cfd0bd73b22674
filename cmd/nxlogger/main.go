// Command nxlogger is the socket-sink counterpart to the logger
// package's client side (spec.md §4.4): it listens on a TCP port,
// writes tasks/nxlogger.pid with that address so reducer processes
// discover it, and appends every received line to tasks/nxlogger.log.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/golang/glog"
)

const (
	pidFileName = "nxlogger.pid"
	logFileName = "nxlogger.log"
	timeLayout  = "2006-01-02 15:04:05"
)

func main() {
	fs := flag.NewFlagSet("nxlogger", flag.ExitOnError)
	directory := fs.String("d", ".", "root directory (tasks/ lives under <directory>/tasks)")
	addr := fs.String("addr", "127.0.0.1:0", "listen address")
	_ = fs.Parse(os.Args[1:])

	tasksDir := filepath.Join(*directory, "tasks")
	if err := os.MkdirAll(tasksDir, 0o755); err != nil {
		glog.Fatalf("nxlogger: %v", err)
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		glog.Fatalf("nxlogger: listen: %v", err)
	}
	defer ln.Close()

	pidPath := filepath.Join(tasksDir, pidFileName)
	if err := os.WriteFile(pidPath, []byte(ln.Addr().String()), 0o644); err != nil {
		glog.Fatalf("nxlogger: write pid file: %v", err)
	}
	defer os.Remove(pidPath)

	logPath := filepath.Join(tasksDir, logFileName)
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		glog.Fatalf("nxlogger: open log: %v", err)
	}
	defer f.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		ln.Close()
	}()

	glog.Infof("nxlogger: listening on %s, writing %s", ln.Addr(), logPath)
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go handleConn(conn, f)
	}
}

func handleConn(conn net.Conn, f *os.File) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := fmt.Sprintf("%s %s\n", time.Now().Format(timeLayout), scanner.Text())
		if _, err := f.WriteString(line); err != nil {
			glog.Warningf("nxlogger: write: %v", err)
			return
		}
		fmt.Print(line)
	}
}
