// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package learning

import (
	"math"

	"github.com/tidwall/gjson"

	"github.com/traylinx/capRoute/internal/recorder"
	"github.com/traylinx/capRoute/internal/util"
)

// Base rewards per result status. Failures are penalized, with user error
// penalized least since the provider is not at fault.
var statusBaseReward = map[recorder.ResultStatus]float64{
	recorder.StatusSuccessPerfect:    1.0,
	recorder.StatusSuccessPartial:    0.5,
	recorder.StatusSuccessAcceptable: 0.3,
	recorder.StatusFailureUser:       -0.2,
	recorder.StatusFailureSystem:     -0.5,
	recorder.StatusFailureConfig:     -0.5,
	recorder.StatusFailureResource:   -0.4,
}

// Reward shapes a single scalar reward for downstream adaptive consumers:
// status base reward, a scaled contribution from the success score, a small
// efficiency bonus that decays exponentially with execution time, and a
// bounded contribution from optional user satisfaction in the record
// metadata ("user_satisfaction", expected in [0,1]). The sum is left
// unclamped; consumers clamp as needed.
func (s *Store) Reward(rec *recorder.ExecutionRecord) float64 {
	if rec == nil {
		return 0
	}

	reward := statusBaseReward[rec.Status]
	reward += util.Clamp01(rec.Score) * s.cfg.ScoreScale

	if s.cfg.EfficiencyDecaySeconds > 0 {
		seconds := rec.ExecutionTime.Seconds()
		reward += s.cfg.EfficiencyBonus * math.Exp(-seconds/s.cfg.EfficiencyDecaySeconds)
	}

	if sat := gjson.Get(rec.MetadataJSON, "user_satisfaction"); sat.Exists() {
		reward += util.Clamp01(sat.Float()) * s.cfg.SatisfactionScale
	}

	return reward
}
