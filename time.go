package asn1x

import "time"

// ASN1Time is a broken-down timestamp: a UTC-anchored instant plus
// microsecond-precision fractional seconds and a record of which wire
// form (UTCTime or GeneralizedTime) produced it, so the encoder can
// round-trip the same form by default.
type ASN1Time struct {
	Time     time.Time
	HasFrac  bool
	FracNano int // fractional seconds, truncated (never rounded) to microsecond precision
	Kind     int // TagUTCTime or TagGeneralizedTime
}

// decodeUTCTime accepts YYMMDDHHMM[SS]Z or YYMMDDHHMM[SS]+-HHMM; missing
// seconds default to "00"; the two-digit year maps to 1950..2049 with
// the conventional pivot at 50.
func decodeUTCTime(content []byte) (ASN1Time, error) {
	s := string(content)
	if len(s) < 10 {
		return ASN1Time{}, mkerrf(KindMappingMismatch, "", "UTCTime %q too short", s)
	}
	yy, err := digits2(s, 0)
	if err != nil {
		return ASN1Time{}, err
	}
	month, err := digits2(s, 2)
	if err != nil {
		return ASN1Time{}, err
	}
	day, err := digits2(s, 4)
	if err != nil {
		return ASN1Time{}, err
	}
	hour, err := digits2(s, 6)
	if err != nil {
		return ASN1Time{}, err
	}
	minute, err := digits2(s, 8)
	if err != nil {
		return ASN1Time{}, err
	}
	rest := s[10:]
	second := 0
	if len(rest) >= 2 && isDigit(rest[0]) && isDigit(rest[1]) {
		second, err = digits2(rest, 0)
		if err != nil {
			return ASN1Time{}, err
		}
		rest = rest[2:]
	}
	loc, err := parseZone(rest)
	if err != nil {
		return ASN1Time{}, err
	}
	year := yy + 1900
	if withinBounds(yy, 0, 49) {
		year = yy + 2000
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	return ASN1Time{Time: t, Kind: TagUTCTime}, nil
}

// decodeGeneralizedTime accepts YYYYMMDDHHMMSS[.fff...][Z|+-HHMM];
// absent timezone means UTC; fractional seconds preserved to
// microsecond precision, truncated not rounded beyond that.
func decodeGeneralizedTime(content []byte) (ASN1Time, error) {
	s := string(content)
	if len(s) < 14 {
		return ASN1Time{}, mkerrf(KindMappingMismatch, "", "GeneralizedTime %q too short", s)
	}
	year, err := digits4(s, 0)
	if err != nil {
		return ASN1Time{}, err
	}
	month, err := digits2(s, 4)
	if err != nil {
		return ASN1Time{}, err
	}
	day, err := digits2(s, 6)
	if err != nil {
		return ASN1Time{}, err
	}
	hour, err := digits2(s, 8)
	if err != nil {
		return ASN1Time{}, err
	}
	minute, err := digits2(s, 10)
	if err != nil {
		return ASN1Time{}, err
	}
	second, err := digits2(s, 12)
	if err != nil {
		return ASN1Time{}, err
	}
	rest := s[14:]
	hasFrac := false
	fracNano := 0
	if len(rest) > 0 && (rest[0] == '.' || rest[0] == ',') {
		rest = rest[1:]
		digitsStr := ""
		for len(rest) > 0 && isDigit(rest[0]) {
			digitsStr += string(rest[0])
			rest = rest[1:]
		}
		if len(digitsStr) > 0 {
			hasFrac = true
			if len(digitsStr) > 6 {
				digitsStr = digitsStr[:6] // truncate beyond microsecond precision
			}
			micros, err := atoi(padRight(digitsStr, 6))
			if err != nil {
				return ASN1Time{}, mkerrf(KindMappingMismatch, "", "bad fractional seconds %q", digitsStr)
			}
			fracNano = micros * 1000
		}
	}
	loc, err := parseZone(rest)
	if err != nil {
		return ASN1Time{}, err
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, fracNano, loc)
	return ASN1Time{Time: t, HasFrac: hasFrac, FracNano: fracNano, Kind: TagGeneralizedTime}, nil
}

func parseZone(rest string) (*time.Location, error) {
	if rest == "" || rest == "Z" {
		return time.UTC, nil
	}
	if len(rest) != 5 || (rest[0] != '+' && rest[0] != '-') {
		return nil, mkerrf(KindMappingMismatch, "", "bad timezone suffix %q", rest)
	}
	hh, err := digits2(rest, 1)
	if err != nil {
		return nil, err
	}
	mm, err := digits2(rest, 3)
	if err != nil {
		return nil, err
	}
	offset := hh*3600 + mm*60
	if rest[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(rest, offset), nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func digits2(s string, at int) (int, error) {
	if at+2 > len(s) || !isDigit(s[at]) || !isDigit(s[at+1]) {
		return 0, mkerrf(KindMappingMismatch, "", "expected two digits in %q at %d", s, at)
	}
	return int(s[at]-'0')*10 + int(s[at+1]-'0'), nil
}

func digits4(s string, at int) (int, error) {
	a, err := digits2(s, at)
	if err != nil {
		return 0, err
	}
	b, err := digits2(s, at+2)
	if err != nil {
		return 0, err
	}
	return a*100 + b, nil
}

func padRight(s string, n int) string {
	for len(s) < n {
		s += "0"
	}
	return s
}

// EncodeUTCTime re-emits t in the canonical YYMMDDHHMMSSZ form, always
// converting to UTC first.
func (t ASN1Time) EncodeUTCTime() []byte {
	u := t.Time.UTC()
	yy := u.Year() % 100
	return []byte(two(yy) + two(int(u.Month())) + two(u.Day()) + two(u.Hour()) + two(u.Minute()) + two(u.Second()) + "Z")
}

// EncodeGeneralizedTime re-emits t in YYYYMMDDHHMMSSZ form, with
// ".f..." appended when fractional seconds are non-zero.
func (t ASN1Time) EncodeGeneralizedTime() []byte {
	u := t.Time.UTC()
	out := four(u.Year()) + two(int(u.Month())) + two(u.Day()) + two(u.Hour()) + two(u.Minute()) + two(u.Second())
	if t.FracNano > 0 {
		micros := t.FracNano / 1000
		frac := trimTrailingZeros(padLeft6(micros))
		if frac != "" {
			out += "." + frac
		}
	}
	out += "Z"
	return []byte(out)
}

func two(n int) string {
	if n < 0 {
		n = 0
	}
	return string([]byte{byte('0' + (n/10)%10), byte('0' + n%10)})
}

func four(n int) string {
	return two(n/100) + two(n%100)
}

func padLeft6(micros int) string {
	s := itoa(micros)
	for len(s) < 6 {
		s = "0" + s
	}
	return s
}

func trimTrailingZeros(s string) string {
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	return s[:i]
}
