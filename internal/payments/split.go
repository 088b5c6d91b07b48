package payments

import "fmt"

// Share is one rider's portion of a split fare.
type Share struct {
	UserID      string `json:"user_id"`
	AmountCents int64  `json:"amount_cents"`
}

// SplitFare divides totalCents evenly across riders in cents. Any remainder
// goes to the first rider so the shares always sum to the total.
func SplitFare(totalCents int64, riderIDs []string) ([]Share, error) {
	if totalCents < 0 {
		return nil, fmt.Errorf("split fare: negative total %d", totalCents)
	}
	if len(riderIDs) == 0 {
		return nil, fmt.Errorf("split fare: no riders")
	}
	n := int64(len(riderIDs))
	base := totalCents / n
	rem := totalCents % n
	shares := make([]Share, len(riderIDs))
	for i, id := range riderIDs {
		shares[i] = Share{UserID: id, AmountCents: base}
	}
	shares[0].AmountCents += rem
	return shares, nil
}
