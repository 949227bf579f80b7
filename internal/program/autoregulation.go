package program

import (
	"time"
)

// AutoregulationConfig tunes readiness scoring and the session-time adjustments derived from it.
type AutoregulationConfig struct {
	// NeutralScore is reported when no signal is available for the day.
	NeutralScore float64
	// LowBelow and HighFrom split the 0..100 score into bands.
	LowBelow float64
	HighFrom float64
	// BaselineDays is how many prior days feed the resting heart rate and HRV baselines.
	BaselineDays int
	// SleepFloorHours scores 0 and SleepTargetHours scores 100.
	SleepFloorHours  float64
	SleepTargetHours float64
	LowWeightFactor  float64
	HighWeightFactor float64
}

// DefaultAutoregulationConfig returns the tuning used in production.
func DefaultAutoregulationConfig() AutoregulationConfig {
	return AutoregulationConfig{
		NeutralScore:     65,    //nolint:mnd // moderate band.
		LowBelow:         50,    //nolint:mnd // band edge.
		HighFrom:         75,    //nolint:mnd // band edge.
		BaselineDays:     7,     //nolint:mnd // one week trend.
		SleepFloorHours:  4,     //nolint:mnd // severely short sleep.
		SleepTargetHours: 8,     //nolint:mnd // full night.
		LowWeightFactor:  0.9,   //nolint:mnd // 10% lighter.
		HighWeightFactor: 1.025, //nolint:mnd // 2.5% heavier.
	}
}

// Autoregulation scores readiness and applies the progression policy. All methods are pure.
type Autoregulation struct {
	cfg AutoregulationConfig
}

// NewAutoregulation creates an engine with the given tuning.
func NewAutoregulation(cfg AutoregulationConfig) *Autoregulation {
	return &Autoregulation{cfg: cfg}
}

// CompletionEvaluation is the outcome of comparing a session against its planned target.
type CompletionEvaluation struct {
	WasSuccessful bool                  `json:"wasSuccessful"`
	NextTarget    PlannedExerciseTarget `json:"nextTarget"`
}

const (
	scoreMin = 0
	scoreMax = 100
	// trendMidpoint is the component score when today's value equals the baseline.
	trendMidpoint = 75
	// restingHRPointsPerBeat penalizes each beat per minute above the baseline.
	restingHRPointsPerBeat = 7.5
	// hrvPointsPerRatio rewards HRV above the baseline, per unit of today/baseline ratio.
	hrvPointsPerRatio = 250
	weightEpsilon     = 1e-9
)

// Readiness blends the signals available for date into a 0..100 score. Missing signals are left out
// of the average, and a day without any signal gets the neutral score.
func (a *Autoregulation) Readiness(health HealthData, wearable WearableScores, date time.Time) ReadinessSnapshot {
	day := CalendarDay(date)
	var components []float64

	today, ok := health[day]
	if ok {
		if today.SleepHours != nil {
			span := a.cfg.SleepTargetHours - a.cfg.SleepFloorHours
			if span > 0 {
				components = append(components, clampScore((*today.SleepHours-a.cfg.SleepFloorHours)/span*scoreMax))
			}
		}
		if today.RestingHeartRate != nil {
			if baseline, found := a.baseline(health, day, func(h DailyHealth) *float64 { return h.RestingHeartRate }); found {
				delta := *today.RestingHeartRate - baseline
				components = append(components, clampScore(trendMidpoint-delta*restingHRPointsPerBeat))
			}
		}
		if today.HeartRateVariability != nil {
			baseline, found := a.baseline(health, day, func(h DailyHealth) *float64 { return h.HeartRateVariability })
			if found && baseline > 0 {
				ratio := *today.HeartRateVariability / baseline
				components = append(components, clampScore(trendMidpoint+(ratio-1)*hrvPointsPerRatio))
			}
		}
	}
	if score, found := wearable[day]; found {
		components = append(components, clampScore(score))
	}

	if len(components) == 0 {
		return a.snapshot(a.cfg.NeutralScore)
	}
	var sum float64
	for _, c := range components {
		sum += c
	}
	return a.snapshot(sum / float64(len(components)))
}

// baseline averages a metric over the days before day.
func (a *Autoregulation) baseline(
	health HealthData,
	day time.Time,
	metric func(DailyHealth) *float64,
) (float64, bool) {
	var (
		sum float64
		n   int
	)
	for i := 1; i <= a.cfg.BaselineDays; i++ {
		h, ok := health[day.AddDate(0, 0, -i)]
		if !ok {
			continue
		}
		if v := metric(h); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func (a *Autoregulation) snapshot(score float64) ReadinessSnapshot {
	band := ReadinessModerate
	switch {
	case score < a.cfg.LowBelow:
		band = ReadinessLow
	case score >= a.cfg.HighFrom:
		band = ReadinessHigh
	}
	return ReadinessSnapshot{Score: score, Band: band}
}

func clampScore(v float64) float64 {
	return min(max(v, scoreMin), scoreMax)
}

// AdjustedTargets scales planned targets for today's readiness. The input is not modified.
func (a *Autoregulation) AdjustedTargets(
	planned []PlannedExerciseTarget,
	readiness ReadinessSnapshot,
	increment float64,
) []PlannedExerciseTarget {
	adjusted := make([]PlannedExerciseTarget, len(planned))
	for i, target := range planned {
		t := target.clone()
		factor := 1.0
		switch readiness.Band {
		case ReadinessLow:
			t.SetCount = max(t.SetCount-1, 1)
			factor = a.cfg.LowWeightFactor
		case ReadinessHigh:
			factor = a.cfg.HighWeightFactor
		case ReadinessModerate:
		}
		if t.TargetWeight != nil {
			*t.TargetWeight = roundToIncrement(*t.TargetWeight*factor, increment)
		}
		adjusted[i] = t
	}
	return adjusted
}

// EvaluateCompletion applies the progression policy to one exercise of a finished session.
//
// The session succeeds when at least SetCount sets were logged and every set reached RepRangeLower at
// the target weight. Success adds the rule's increment and clears the failure streak. Failure holds the
// weight and extends the streak, and a streak reaching the rule's threshold deloads the weight and
// clears the streak. A target without a weight is seeded from the heaviest logged set, rounded down
// so the sets that produced it reach it.
func (a *Autoregulation) EvaluateCompletion(
	planned PlannedExerciseTarget,
	completed []WorkoutSet,
	rule ProgressionRule,
) CompletionEvaluation {
	next := planned.clone()
	if next.TargetWeight == nil {
		if top := heaviestSet(completed); top > 0 {
			seeded := floorToIncrement(top, rule.WeightIncrement)
			next.TargetWeight = &seeded
		}
	}

	success := len(completed) > 0 && len(completed) >= planned.SetCount
	for _, set := range completed {
		if set.Reps < planned.RepRangeLower {
			success = false
		}
		if next.TargetWeight != nil && set.Weight+weightEpsilon < *next.TargetWeight {
			success = false
		}
	}

	if success {
		if next.TargetWeight != nil {
			*next.TargetWeight = roundToIncrement(*next.TargetWeight+rule.WeightIncrement, rule.WeightIncrement)
		}
		next.FailureStreak = 0
		return CompletionEvaluation{WasSuccessful: true, NextTarget: next}
	}

	next.FailureStreak++
	threshold := rule.FailureThreshold
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if next.FailureStreak >= threshold {
		if next.TargetWeight != nil {
			*next.TargetWeight = deload(*next.TargetWeight, rule)
		}
		next.FailureStreak = 0
	}
	return CompletionEvaluation{WasSuccessful: false, NextTarget: next}
}

// deload returns a weight strictly below current unless current is already zero.
func deload(current float64, rule ProgressionRule) float64 {
	factor := rule.DeloadFactor
	if factor <= 0 || factor >= 1 {
		factor = DefaultDeloadFactor
	}
	lowered := roundToIncrement(current*factor, rule.WeightIncrement)
	if lowered >= current {
		step := rule.WeightIncrement
		if step <= 0 {
			step = current * (1 - factor)
		}
		lowered = current - step
	}
	return max(lowered, 0)
}
