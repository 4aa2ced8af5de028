// Copyright 2026 the Certmint contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package plog implements a thin layer over klog to help enforce certmint's logging convention.
// Logs are always structured as a constant message with key and value pairs of related metadata.
//
// The logging levels in order of increasing verbosity are: error, warning, info and debug.
//
// error and warning logs are always emitted (there is no way for the end user to disable them),
// and thus should be used sparingly. Ideally, logs at these levels should be actionable.
//
// info should be reserved for "nice to know" information about an issuance.
//
// debug should be used for information targeted at developers and to aid in support cases.
// Care must be taken at this level to never log key material.
//
// All log output goes to stderr. stdout is reserved for the issued certificate.
package plog

import "k8s.io/klog/v2"

const errorKey = "error"

// Use Error to log an unexpected system error.
func Error(msg string, err error, keysAndValues ...interface{}) {
	klog.ErrorS(err, msg, keysAndValues...)
}

func Warning(msg string, keysAndValues ...interface{}) {
	// klog's structured logging has no concept of a warning (i.e. no WarningS function),
	// so use info at log level zero as a proxy and add a key to make these easier to find.
	keysAndValues = append([]interface{}{"warning", "true"}, keysAndValues...)
	klog.V(klogLevelWarning).InfoS(msg, keysAndValues...)
}

// Use WarningErr to issue a Warning message with an error object as part of the message.
func WarningErr(msg string, err error, keysAndValues ...interface{}) {
	Warning(msg, append([]interface{}{errorKey, err}, keysAndValues...)...)
}

func Info(msg string, keysAndValues ...interface{}) {
	klog.V(klogLevelInfo).InfoS(msg, keysAndValues...)
}

// Use InfoErr to log an expected error, e.g. validation failure of the input public key.
func InfoErr(msg string, err error, keysAndValues ...interface{}) {
	Info(msg, append([]interface{}{errorKey, err}, keysAndValues...)...)
}

func Debug(msg string, keysAndValues ...interface{}) {
	klog.V(klogLevelDebug).InfoS(msg, keysAndValues...)
}

// Use DebugErr to issue a Debug message with an error object as part of the message.
func DebugErr(msg string, err error, keysAndValues ...interface{}) {
	Debug(msg, append([]interface{}{errorKey, err}, keysAndValues...)...)
}
