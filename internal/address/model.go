// Package address is the read side of the external user/address
// subsystem. Checkout copies the resolved address into the order as a
// snapshot, never a live reference.
package address

type Address struct {
	ID     uint
	UserID uint

	Recipient string
	Phone     string
	Line1     string
	Line2     *string
	City      string
	Province  string
	Postal    string
	Country   string
}

// Snapshot is the immutable copy persisted on an order.
type Snapshot struct {
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	Province  string `json:"province"`
	Postal    string `json:"postal"`
	Country   string `json:"country"`
}

func (a *Address) Snapshot() Snapshot {
	s := Snapshot{
		Recipient: a.Recipient,
		Phone:     a.Phone,
		Line1:     a.Line1,
		City:      a.City,
		Province:  a.Province,
		Postal:    a.Postal,
		Country:   a.Country,
	}
	if a.Line2 != nil {
		s.Line2 = *a.Line2
	}
	return s
}
