// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recorder

import "fmt"

// ResultStatus is the outcome taxonomy of a provider execution.
type ResultStatus string

const (
	// StatusSuccessPerfect means the execution fully satisfied the request.
	StatusSuccessPerfect ResultStatus = "success_perfect"
	// StatusSuccessPartial means the execution satisfied part of the request.
	StatusSuccessPartial ResultStatus = "success_partial"
	// StatusSuccessAcceptable means the result was usable but below target quality.
	StatusSuccessAcceptable ResultStatus = "success_acceptable"
	// StatusFailureUser means the request itself was malformed or out of scope.
	StatusFailureUser ResultStatus = "failure_user"
	// StatusFailureSystem means the provider invocation crashed.
	StatusFailureSystem ResultStatus = "failure_system"
	// StatusFailureConfig means catalog/category misconfiguration.
	StatusFailureConfig ResultStatus = "failure_config"
	// StatusFailureResource means a timeout or quota exhaustion was reported.
	StatusFailureResource ResultStatus = "failure_resource"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (ResultStatus, error) {
	switch ResultStatus(s) {
	case StatusSuccessPerfect, StatusSuccessPartial, StatusSuccessAcceptable,
		StatusFailureUser, StatusFailureSystem, StatusFailureConfig, StatusFailureResource:
		return ResultStatus(s), nil
	default:
		return "", fmt.Errorf("unknown result status: %q", s)
	}
}

// IsSuccess reports whether the status counts as a success for learning.
func (s ResultStatus) IsSuccess() bool {
	switch s {
	case StatusSuccessPerfect, StatusSuccessPartial, StatusSuccessAcceptable:
		return true
	default:
		return false
	}
}

// IsFailure reports whether the status is one of the failure variants.
func (s ResultStatus) IsFailure() bool {
	switch s {
	case StatusFailureUser, StatusFailureSystem, StatusFailureConfig, StatusFailureResource:
		return true
	default:
		return false
	}
}
