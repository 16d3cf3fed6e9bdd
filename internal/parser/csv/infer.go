package csv

import (
	"strconv"
	"strings"
)

// inferColumn narrows column col of rows in place. Candidates are tried in
// order int64, bool, float64; the first one every non-null cell parses as
// wins. Columns that fit none stay as strings.
func inferColumn(rows [][]any, col int) {
	isInt, isBool, isFloat := true, true, true
	nonNull := 0
	for _, row := range rows {
		s, ok := row[col].(string)
		if !ok {
			continue
		}
		nonNull++
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isBool {
			if _, ok := parseBool(s); !ok {
				isBool = false
			}
		}
		if isFloat {
			if _, ok := parseFloat(s); !ok {
				isFloat = false
			}
		}
		if !isInt && !isBool && !isFloat {
			return
		}
	}
	if nonNull == 0 {
		return
	}

	for _, row := range rows {
		s, ok := row[col].(string)
		if !ok {
			continue
		}
		switch {
		case isInt:
			row[col], _ = strconv.ParseInt(s, 10, 64)
		case isBool:
			row[col], _ = parseBool(s)
		case isFloat:
			row[col], _ = parseFloat(s)
		}
	}
}

// parseBool accepts only the words true and false (any case). strconv's
// looser forms ("1", "t") would turn numeric columns into booleans.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// parseFloat is strconv.ParseFloat restricted to decimal notation; hex
// mantissas such as "0x1p3" stay text.
func parseFloat(s string) (float64, bool) {
	if strings.ContainsAny(s, "xX") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}
