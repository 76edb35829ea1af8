// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package device

import "context"

// doAsync runs body in a goroutine so that a blocking ADB call can be
// abandoned when ctx is done.
//
// doAsync returns body's result, or ctx.Err() if ctx is done first. If the
// returned error is non-nil and clean is non-nil, clean runs in the body
// goroutine after body finishes.
func doAsync(ctx context.Context, body func() error, clean func()) error {
	bodyCh := make(chan error, 1)
	retCh := make(chan error, 1)
	go func() {
		bodyCh <- body()
		if err := <-retCh; err != nil && clean != nil {
			clean()
		}
	}()

	var ret error
	select {
	case ret = <-bodyCh:
	case <-ctx.Done():
		ret = ctx.Err()
	}
	retCh <- ret
	return ret
}
