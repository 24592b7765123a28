// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

// Package alert carries user-visible notices from the state layer to the
// rendering layer. The rendering layer decides how to show them; the default
// sink just logs.
package alert

import "github.com/edulab/sims-console/core/logger"

// Sink receives user-visible messages.
type Sink interface {
	Notify(message string)
}

// Func adapts a function to a Sink.
type Func func(message string)

// Notify implements Sink.
func (f Func) Notify(message string) { f(message) }

// Log returns a sink that writes notices to the default logger.
func Log() Sink {
	return Func(func(message string) {
		logger.Default().Warnln(message)
	})
}
