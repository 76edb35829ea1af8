// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package hostexec

import (
	"regexp"
	"strings"
)

// plainRE matches words that need no quoting in a POSIX shell. A leading "="
// is excluded because zsh expands it.
var plainRE = regexp.MustCompile(`^[-\w@%+:,./][-\w@%+:,./=]*$`)

// Quote returns s quoted for a POSIX shell, or s itself if it needs no
// quoting.
func Quote(s string) string {
	if plainRE.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// CommandLine joins args into a shell command line, quoting as needed. It is
// used for logging host commands and for building device shell commands.
func CommandLine(args ...string) string {
	q := make([]string, len(args))
	for i, a := range args {
		q[i] = Quote(a)
	}
	return strings.Join(q, " ")
}
