package processor

// ComputeUndertime scores one day record against the standard 08:00-17:00
// schedule with the fixed 12:01-12:55 lunch window. Only Present records
// with both punches recorded are applicable; weekends, absences, and
// single-punch days yield a non-applicable result.
//
// The shortfall adds the duration deficit and the boundary terms:
//
//	shortfall = max(0, 480 - worked) + max(0, arrival - 08:00) + max(0, 17:00 - departure)
//
// A late arrival therefore counts twice, once through the reduced worked
// duration and once through the late term. That additive policy matches the
// historical reports this system replaces and is kept for parity.
func ComputeUndertime(rec DayRecord) UndertimeResult {
	result := UndertimeResult{
		EmployeeKey: rec.EmployeeKey,
		Date:        rec.Date,
	}

	if rec.Status.Kind != DayPresent {
		return result
	}
	if !rec.Status.TimeIn.IsRecorded() || !rec.Status.TimeOut.IsRecorded() {
		return result
	}

	arrival := rec.Status.TimeIn.Clock().Minutes()
	departure := rec.Status.TimeOut.Clock().Minutes()

	lunch := LunchInClock.Minutes() - LunchOutClock.Minutes()
	worked := (departure - arrival) - lunch

	base := RequiredMinutes - worked
	if base < 0 {
		base = 0
	}

	late := arrival - ScheduleArrivalHour*60
	if late < 0 {
		late = 0
	}

	early := ScheduleDepartureHour*60 - departure
	if early < 0 {
		early = 0
	}

	result.Applicable = true
	result.ShortfallMinutes = base + late + early
	return result
}

// ComputeAllUndertime scores every record in order.
func ComputeAllUndertime(records []DayRecord) []UndertimeResult {
	results := make([]UndertimeResult, 0, len(records))
	for _, rec := range records {
		results = append(results, ComputeUndertime(rec))
	}
	return results
}
