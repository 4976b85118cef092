// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package fault classifies errors from payment API request execution
// into a small closed set of failure kinds. This is the seam between
// whatever the underlying transport produces and the retry decision
// logic in package retry, and it is also handy for bucketing errors in
// logs and instrumentation.
//
// Package fault is extremely lightweight, as it depends only on the
// standard library packages "context", "errors", "strconv", and
// "syscall", so it doesn't bring any significant dependencies when
// imported as a standalone package.
package fault
