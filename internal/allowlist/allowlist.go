// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package allowlist holds the fixed set of peer IP addresses the server is
// willing to serve.
//
// The list is read once at startup and never changes afterwards; there is
// no reload. Because it is immutable it may be shared freely.
package allowlist

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
)

// AllowList is an immutable set of IP addresses.
type AllowList struct {
	addrs map[netip.Addr]struct{}
}

// Load reads the allow-list file at path. The file holds IP address
// literals separated by any whitespace; order and duplicates are
// irrelevant.
//
// A missing or unreadable file, or a token that is not an IP address,
// is an error: the server must not start with an unknown allow-list.
func Load(path string) (*AllowList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse builds an AllowList from whitespace-separated IP literals read
// from r.
func Parse(r io.Reader) (*AllowList, error) {
	list := &AllowList{addrs: make(map[netip.Addr]struct{})}

	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		token := scanner.Text()
		addr, err := netip.ParseAddr(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, token)
		}
		list.addrs[addr.Unmap()] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	return list, nil
}

// Len returns the number of distinct addresses on the list.
func (l *AllowList) Len() int {
	return len(l.addrs)
}

// Contains reports whether ip is on the list. IPv4-mapped IPv6 addresses
// match their IPv4 form.
func (l *AllowList) Contains(ip netip.Addr) bool {
	_, ok := l.addrs[ip.Unmap()]
	return ok
}

// Permits reports whether the peer behind addr is on the list. Only TCP
// and UDP addresses carry an IP; any other kind is refused.
func (l *AllowList) Permits(addr net.Addr) bool {
	switch a := addr.(type) {
	case *net.TCPAddr:
		return l.Contains(a.AddrPort().Addr())
	case *net.UDPAddr:
		return l.Contains(a.AddrPort().Addr())
	default:
		return false
	}
}
