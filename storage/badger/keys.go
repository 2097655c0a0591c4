package badger

import (
	"encoding/binary"

	"github.com/poiesic/helpdesk/core"
)

// Key families. The colon after "ord" keeps the primary family disjoint
// from the index families under prefix iteration.
const (
	orderPrefix          = "ord:"
	orderCustomerPrefix  = "ordcus:"
	orderCustomerIDIndex = "ordcid:"
	orderStatusPrefix    = "ordsta:"
	orderIDSeq           = "ordseq"
)

// makeOrderKey generates the primary key for an order.
func makeOrderKey(orderID string) []byte {
	return []byte(orderPrefix + orderID)
}

// makeIndexKey generates a composite index key.
// Format: prefix + term + ":" + seq + orderID
// The sequence number is written BigEndian so lexicographic iteration
// visits entries in creation order; the order ID suffix keeps entries
// unique even if the sequence restarts.
func makeIndexKey(prefix, term string, seq uint64, orderID string) []byte {
	head := prefix + term + ":"
	buf := make([]byte, len(head)+8+len(orderID))
	offset := copy(buf, head)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	offset += 8
	copy(buf[offset:], orderID)
	return buf
}

// makePartialIndexKey generates the iteration prefix for one index term.
func makePartialIndexKey(prefix, term string) []byte {
	return []byte(prefix + term + ":")
}

func makeCustomerKey(customerName string, seq uint64, orderID string) []byte {
	return makeIndexKey(orderCustomerPrefix, customerName, seq, orderID)
}

func makeCustomerIDKey(customerID string, seq uint64, orderID string) []byte {
	return makeIndexKey(orderCustomerIDIndex, customerID, seq, orderID)
}

func makeStatusKey(status core.OrderStatus, seq uint64, orderID string) []byte {
	return makeIndexKey(orderStatusPrefix, string(status), seq, orderID)
}
