package domain

// NetPosition computes a client's net position from a set of orders: the sum
// of prices where the client is supplier minus the sum where it is consumer.
// Orders referencing other clients are ignored, so callers may pass either a
// pre-filtered slice or the full order set and get the same answer. This is
// the single profit oracle: the admission floor check and the reporting
// endpoints both go through it.
func NetPosition(clientID string, orders []*Order) Cents {
	var total Cents
	for _, o := range orders {
		if o.SupplierID == clientID {
			total += o.Price
		}
		if o.ConsumerID == clientID {
			total -= o.Price
		}
	}
	return total
}
