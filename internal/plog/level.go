// Copyright 2026 the Certmint contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"flag"
	"strconv"

	"k8s.io/klog/v2"

	"github.com/certmint/certmint/internal/constable"
)

// LogLevel is an enum that controls verbosity of logs.
// Valid values in order of increasing verbosity are leaving it unset, info and debug.
type LogLevel string

const (
	// LevelWarning (i.e. leaving the log level unset) maps to klog log level 0.
	LevelWarning LogLevel = ""
	// LevelInfo maps to klog log level 2.
	LevelInfo LogLevel = "info"
	// LevelDebug maps to klog log level 4.
	LevelDebug LogLevel = "debug"

	errInvalidLogLevel = constable.Error("invalid log level, valid choices are the empty string, info and debug")
)

const (
	klogLevelWarning = iota * 2
	klogLevelInfo
	klogLevelDebug
)

//nolint:gochecknoglobals // klog binds its settings to a flag set at init.
var klogFlags flag.FlagSet

//nolint:gochecknoinits
func init() {
	klog.InitFlags(&klogFlags)

	// The certificate is written to stdout, so every log line must stay on stderr.
	if err := klogFlags.Set("logtostderr", "true"); err != nil {
		panic(err) // default logging config must always work
	}
}

func ValidateAndSetLogLevelGlobally(level LogLevel) error {
	var klogLogLevel int

	switch level {
	case LevelWarning:
		klogLogLevel = klogLevelWarning // unset means minimal logs (Error and Warning)
	case LevelInfo:
		klogLogLevel = klogLevelInfo
	case LevelDebug:
		klogLogLevel = klogLevelDebug
	default:
		return errInvalidLogLevel
	}

	if err := klogFlags.Set("v", strconv.Itoa(klogLogLevel)); err != nil {
		panic(err) // programmer error
	}

	return nil
}
