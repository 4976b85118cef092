// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

// Version is the version of this module, reported to the API in the
// User-Agent header of every request.
const Version = "0.1.0"

const userAgent = "payx/" + Version + " (go)"
