package league

import "fmt"

// League is a scraped competition source. The external code is the natural
// key; the surrogate ID is never reassigned once a code exists.
type League struct {
	ID   int64
	Code string
	Name string
}

func (l League) Validate() error {
	if l.Code == "" {
		return fmt.Errorf("league code is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}

	return nil
}
