// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Credentials hold the secrets needed to authenticate with the
// payment API.
type Credentials struct {
	// APIKey is the merchant's private API key.
	APIKey string
}

// LoadCredentials reads credentials from a Postman environment export,
// the JSON format the merchant dashboard produces:
//
//	{
//	  "values": [
//	    {"key": "private_key", "value": "...", "enabled": true},
//	    ...
//	  ]
//	}
//
// The API key is taken from the first entry whose key is
// "private_key" and whose enabled flag is not false. An absent
// enabled flag counts as enabled.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("payx: read credentials file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("payx: credentials file %s is not valid JSON", path)
	}
	var key string
	for _, entry := range gjson.GetBytes(data, "values").Array() {
		if entry.Get("key").String() != "private_key" {
			continue
		}
		if enabled := entry.Get("enabled"); enabled.Exists() && !enabled.Bool() {
			continue
		}
		key = entry.Get("value").String()
		break
	}
	if key == "" {
		return nil, fmt.Errorf("payx: credentials file %s has no enabled private_key entry", path)
	}
	return &Credentials{APIKey: key}, nil
}
