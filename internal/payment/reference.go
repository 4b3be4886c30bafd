package payment

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
)

// MakeReference builds the order reference sent to FenanPay: the decimal
// order id followed by 8 random hex characters. The suffix makes references
// hard to enumerate from the public webhook side; it carries no information
// and is discarded on the way back in.
//
// The id is recovered by a greedy leading-digit parse, so the suffix must
// begin with a letter: a digit there would be absorbed into the id.
func MakeReference(orderID int64) (string, error) {
	var nonce [4]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	suffix := []byte(hex.EncodeToString(nonce[:]))
	suffix[0] = 'a' + (nonce[0]>>4)%6
	return strconv.FormatInt(orderID, 10) + string(suffix), nil
}

// ExtractOrderID recovers the order id from a reference by reading the
// longest leading run of digits. Returns 0 when the reference has no usable
// prefix. This greedy parse is the wire contract with references already
// issued to the provider; it must not be tightened.
func ExtractOrderID(ref string) int64 {
	i := 0
	for i < len(ref) && ref[i] >= '0' && ref[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0
	}
	id, err := strconv.ParseInt(ref[:i], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
