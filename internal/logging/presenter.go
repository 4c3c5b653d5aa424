// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	stderrors "errors"
	"fmt"

	perrors "pocketctl/cli/internal/errors"
)

// PresentError formats err for the final line a command prints, masking
// secrets. Backend errors show the server's message and status rather than
// the full wrapped chain unless verbose is set.
func PresentError(context string, err error, verbose bool) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	var e *perrors.E
	if !verbose && stderrors.As(err, &e) && e.Message != "" {
		msg = e.Message
		if e.Status != 0 {
			msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
		}
	}
	if context == "" {
		return Mask(msg)
	}
	return fmt.Sprintf("%s: %s", context, Mask(msg))
}
