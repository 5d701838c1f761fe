// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import "regexp"

var providerIDRegex = regexp.MustCompile(`^[a-zA-Z0-9]+(?:[-_][a-zA-Z0-9]+)*$`)

// IsValidProviderID checks that a provider ID is alphanumeric with optional
// hyphen or underscore separators.
func IsValidProviderID(id string) bool {
	return providerIDRegex.MatchString(id)
}
