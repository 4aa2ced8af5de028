// Copyright 2026 the Certmint contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package plog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateAndSetLogLevelGlobally(t *testing.T) {
	tests := []struct {
		name    string
		level   LogLevel
		wantErr string
		wantV   string
	}{
		{
			name:  "unset means warning",
			level: LevelWarning,
			wantV: "0",
		},
		{
			name:  "info",
			level: LevelInfo,
			wantV: "2",
		},
		{
			name:  "debug",
			level: LevelDebug,
			wantV: "4",
		},
		{
			name:    "invalid level",
			level:   LogLevel("trace"),
			wantErr: "invalid log level, valid choices are the empty string, info and debug",
			wantV:   "4", // unchanged from the previous test case
		},
	}
	// not parallel because these cases mutate global klog state on purpose.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAndSetLogLevelGlobally(tt.level)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantV, klogFlags.Lookup("v").Value.String())
		})
	}
}

func TestLogsStayOnStderr(t *testing.T) {
	require.Equal(t, "true", klogFlags.Lookup("logtostderr").Value.String())
}
