package entity

// Address is a shipping address snapshot embedded in orders and redemptions.
// It is a value object: once captured on a record it never changes, even if
// the account later edits its saved addresses.
type Address struct {
	Name       string // Recipient or label, e.g. "Casa".
	Street     string
	Number     string
	Apartment  string
	City       string
	Commune    string
	Region     string
	PostalCode string
}

// IsZero reports whether no address was provided.
func (a Address) IsZero() bool {
	return a == Address{}
}
