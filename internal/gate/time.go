package gate

import (
	"fmt"
	"strconv"
	"strings"
)

// minuteOfDay parses "HH:MM" into minutes since midnight.
func minuteOfDay(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// windowContains reports whether [reqStart, reqEnd] fits entirely inside
// [workStart, workEnd]. Any side without a stated constraint is open and
// therefore satisfied; an unparseable time is treated as no constraint
// rather than silently rejecting the candidate.
func windowContains(workStart, workEnd, reqStart, reqEnd string) bool {
	if reqStart == "" || reqEnd == "" || workStart == "" || workEnd == "" {
		return true
	}
	ws, err := minuteOfDay(workStart)
	if err != nil {
		return true
	}
	we, err := minuteOfDay(workEnd)
	if err != nil {
		return true
	}
	rs, err := minuteOfDay(reqStart)
	if err != nil {
		return true
	}
	re, err := minuteOfDay(reqEnd)
	if err != nil {
		return true
	}
	return ws <= rs && re <= we
}
