package model

import (
	"encoding/json"
	"fmt"
)

// DKIMStatus is the outcome of the last DKIM verification of a domain.
type DKIMStatus int

const (
	DKIMNotSet   DKIMStatus = iota // selector or key empty, nothing checked
	DKIMNotFound                   // DNS lookup failed
	DKIMNoDNSKey                   // TXT record has no p= tag
	DKIMNoMatch                    // published key differs from the stored one
	DKIMOK
)

var dkimStatusNames = [...]string{
	DKIMNotSet:   "NOTSET",
	DKIMNotFound: "NOTFOUND",
	DKIMNoDNSKey: "NODNSKEY",
	DKIMNoMatch:  "NOMATCH",
	DKIMOK:       "OK",
}

var dkimStatusDescriptions = [...]string{
	DKIMNotSet:   "not set",
	DKIMNotFound: "dns record not found",
	DKIMNoDNSKey: "no dns key found in record",
	DKIMNoMatch:  "key and dns record don't match",
	DKIMOK:       "ok",
}

func (s DKIMStatus) Valid() bool {
	return s >= DKIMNotSet && s <= DKIMOK
}

func (s DKIMStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("DKIMStatus(%d)", int(s))
	}
	return dkimStatusNames[s]
}

// Description is the human readable label shown to operators.
func (s DKIMStatus) Description() string {
	if !s.Valid() {
		return s.String()
	}
	return dkimStatusDescriptions[s]
}

func (s DKIMStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *DKIMStatus) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for i, n := range dkimStatusNames {
		if n == name {
			*s = DKIMStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown dkim status %q", name)
}
