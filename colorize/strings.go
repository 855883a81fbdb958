// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// Copyright (c) 2025 hlcolor contributors
// released under the MIT license

package colorize

import (
	"strings"

	"golang.org/x/text/secure/precis"
)

// Each pass of PRECIS casefolding is a composition of idempotent operations,
// but not idempotent itself. Therefore, RFC 8265 says "do it four times and hope
// it converges" (lolwtf). Golang's PRECIS implementation has a "repeat" option,
// which provides this functionality, but unfortunately it's not exposed publicly.
func iterateFolding(profile *precis.Profile, oldStr string) (str string, err error) {
	str = oldStr
	// follow the stabilizing rules laid out here:
	// https://tools.ietf.org/html/draft-ietf-precis-7564bis-10.html#section-7
	for i := 0; i < 4; i++ {
		str, err = profile.CompareKey(str)
		if err != nil {
			return "", err
		}
		if oldStr == str {
			break
		}
		oldStr = str
	}
	if oldStr != str {
		return "", errCouldNotStabilize
	}
	return str, nil
}

// Casefold returns a casefolded nick, for comparisons.
func Casefold(str string) (string, error) {
	if len(str) == 0 {
		return "", errStringIsEmpty
	}
	return iterateFolding(precis.UsernameCaseMapped, str)
}

// foldNick is Casefold for table keys. Nicks PRECIS rejects (other networks
// allow more than IRC does) fall back to plain lowercasing.
func foldNick(nick string) string {
	folded, err := Casefold(nick)
	if err != nil {
		return strings.ToLower(nick)
	}
	return folded
}
