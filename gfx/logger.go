// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"log/slog"

	"github.com/gogpu/foliage/internal/logx"
)

func slogger() *slog.Logger { return logx.Logger() }
