// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package instance

import (
	"log/slog"

	"github.com/gogpu/foliage/internal/logx"
)

// slogger returns the current package logger.
func slogger() *slog.Logger { return logx.Logger() }
