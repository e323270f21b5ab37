package service

import (
	"testing"

	"github.com/dosetrack/backend/pkg/model"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_DailyAlwaysActiveFromStart(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("DAILY with no duration is active on every date on or after start", prop.ForAll(
		func(offset int) bool {
			start := day("2024-01-01")
			active, err := IsActiveOn(model.FrequencyConfig{}, model.FrequencyDaily, start, start.AddDate(0, 0, offset), nil)
			if err != nil {
				return false
			}
			return active
		},
		gen.IntRange(0, 3650),
	))

	properties.TestingRun(t)
}

func TestProperty_EveryOtherDayParity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("EVERY_OTHER_DAY is active exactly on even day offsets", prop.ForAll(
		func(offset int) bool {
			start := day("2024-01-01")
			active, err := IsActiveOn(model.FrequencyConfig{}, model.FrequencyEveryOtherDay, start, start.AddDate(0, 0, offset), nil)
			if err != nil {
				return false
			}
			return active == (offset%2 == 0)
		},
		gen.IntRange(0, 3650),
	))

	properties.TestingRun(t)
}

func TestProperty_SpecificDaysWeeklyDensity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	allDays := []model.Weekday{
		model.WeekdayMonday, model.WeekdayTuesday, model.WeekdayWednesday,
		model.WeekdayThursday, model.WeekdayFriday, model.WeekdaySaturday,
		model.WeekdaySunday,
	}

	properties.Property("any 7-day window has exactly len(specificDays) active dates", prop.ForAll(
		func(dayCount int, windowStart int) bool {
			cfg := model.FrequencyConfig{SpecificDays: allDays[:dayCount]}
			start := day("2024-01-01")

			active := 0
			for offset := windowStart; offset < windowStart+7; offset++ {
				ok, err := IsActiveOn(cfg, model.FrequencySpecificDaysOfWeek, start, start.AddDate(0, 0, offset), nil)
				if err != nil {
					return false
				}
				if ok {
					active++
				}
			}
			return active == dayCount
		},
		gen.IntRange(1, 7),
		gen.IntRange(0, 365),
	))

	properties.TestingRun(t)
}

func TestProperty_CyclePeriodicity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("cycle activity repeats identically every cycle length", prop.ForAll(
		func(activeDays int, restDays int, offset int) bool {
			cfg := model.FrequencyConfig{CycleActiveDays: activeDays, CycleRestDays: restDays}
			start := day("2024-01-01")
			cycleLen := activeDays + restDays

			first, err := IsActiveOn(cfg, model.FrequencyCycleBased, start, start.AddDate(0, 0, offset), nil)
			if err != nil {
				return false
			}
			second, err := IsActiveOn(cfg, model.FrequencyCycleBased, start, start.AddDate(0, 0, offset+cycleLen), nil)
			if err != nil {
				return false
			}
			return first == second && first == (offset%cycleLen < activeDays)
		},
		gen.IntRange(1, 30),
		gen.IntRange(0, 30),
		gen.IntRange(0, 365),
	))

	properties.TestingRun(t)
}
