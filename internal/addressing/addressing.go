// Package addressing derives the overlay network's own IPv6 CIDRs from its
// hex network and node identifiers, bit-for-bit compatible with the
// controller's computation. This is pure arithmetic; it has no DNS
// dependency and nothing in it is specific to this package's callers.
package addressing

import (
	"encoding/hex"
	"fmt"
	"net"
)

// digest folds a hex string into a uint64 the same way the controller does:
// each decoded byte is shifted in from the low end.
func digest(s string) (uint64, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid hex id %q: %w", s, err)
	}
	var acc uint64
	for _, x := range b {
		acc = acc<<8 | uint64(x)
	}
	return acc, nil
}

// RFC4193Network derives the /88 RFC4193 (ULA) CIDR for the network itself,
// i.e. without a member's node bits folded in.
func RFC4193Network(networkIDHex string) (*net.IPNet, error) {
	netParts, err := digest(networkIDHex)
	if err != nil {
		return nil, err
	}
	ip := rfc4193IP(netParts, 0, false)
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(88, 128)}, nil
}

// RFC4193 derives the member's stable /128 overlay IPv6 address, inside the
// network's /88 RFC4193 block.
func RFC4193(networkIDHex, nodeIDHex string) (*net.IPNet, error) {
	netParts, err := digest(networkIDHex)
	if err != nil {
		return nil, err
	}
	nodeParts, err := digest(nodeIDHex)
	if err != nil {
		return nil, err
	}
	ip := rfc4193IP(netParts, nodeParts, true)
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, nil
}

func rfc4193IP(netParts, nodeParts uint64, withNode bool) net.IP {
	var b [16]byte
	putu16(b[0:2], 0xfd00|((netParts>>56)&0xff))
	putu16(b[2:4], (netParts>>40)&0xffff)
	putu16(b[4:6], (netParts>>24)&0xffff)
	putu16(b[6:8], (netParts>>8)&0xffff)
	putu16(b[8:10], (((netParts&0xff)<<8)|0x99)&0xffff)
	if withNode {
		putu16(b[10:12], 0x9300|((nodeParts>>32)&0xff))
		putu16(b[12:14], (nodeParts>>16)&0xffff)
		putu16(b[14:16], nodeParts&0xffff)
	} else {
		putu16(b[10:12], 0x9300)
	}
	return net.IP(b[:])
}

// SixPlaneNetwork derives the /40 6PLANE CIDR for the network itself.
func SixPlaneNetwork(networkIDHex string) (*net.IPNet, error) {
	netParts, err := digest(networkIDHex)
	if err != nil {
		return nil, err
	}
	ip := sixPlaneIP(netParts^(netParts>>32), 0, false)
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(40, 128)}, nil
}

// SixPlane derives the member's /80 6PLANE overlay IPv6 address.
func SixPlane(networkIDHex, nodeIDHex string) (*net.IPNet, error) {
	netParts, err := digest(networkIDHex)
	if err != nil {
		return nil, err
	}
	nodeParts, err := digest(nodeIDHex)
	if err != nil {
		return nil, err
	}
	folded := netParts ^ (netParts >> 32)
	ip := sixPlaneIP(folded, nodeParts, true)
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(80, 128)}, nil
}

func sixPlaneIP(foldedNet, nodeParts uint64, withNode bool) net.IP {
	var b [16]byte
	putu16(b[0:2], 0xfc00|((foldedNet>>24)&0xff))
	putu16(b[2:4], (foldedNet>>8)&0xffff)
	if withNode {
		putu16(b[4:6], (((foldedNet&0xff)<<8)|((nodeParts>>32)&0xff))&0xffff)
		putu16(b[6:8], (nodeParts>>16)&0xffff)
		putu16(b[8:10], nodeParts&0xffff)
	} else {
		putu16(b[4:6], (foldedNet&0xff)<<8)
	}
	putu16(b[14:16], 1)
	return net.IP(b[:])
}

func putu16(dst []byte, v uint64) {
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}
