package repo

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// RPMInfo is the header data extracted from an RPM-style package.
type RPMInfo struct {
	Name    string
	Version string
	Release string
	Arch    string
}

// rpm header tags we care about
const (
	rpmTagName    = 1000
	rpmTagVersion = 1001
	rpmTagRelease = 1002
	rpmTagArch    = 1022
)

var (
	rpmLeadMagic   = []byte{0xed, 0xab, 0xee, 0xdb}
	rpmHeaderMagic = []byte{0x8e, 0xad, 0xe8, 0x01}
)

// ReadRPM parses path far enough to confirm it is a structurally intact
// RPM package: lead magic, signature section, and main header section all
// readable, with name/version/release tags present. The payload is not
// unpacked.
func ReadRPM(path string) (*RPMInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lead := make([]byte, 96)
	if _, err := io.ReadFull(f, lead); err != nil {
		return nil, fmt.Errorf("truncated lead: %w", err)
	}
	if !bytes.Equal(lead[0:4], rpmLeadMagic) {
		return nil, fmt.Errorf("not an rpm package (bad lead magic)")
	}

	// Signature section, padded to an 8-byte boundary.
	if _, _, err := skipHeaderSection(f, true); err != nil {
		return nil, fmt.Errorf("corrupt signature section: %w", err)
	}

	index, store, err := readHeaderSection(f)
	if err != nil {
		return nil, fmt.Errorf("corrupt header section: %w", err)
	}

	info := &RPMInfo{
		Name:    stringTag(index, store, rpmTagName),
		Version: stringTag(index, store, rpmTagVersion),
		Release: stringTag(index, store, rpmTagRelease),
		Arch:    stringTag(index, store, rpmTagArch),
	}
	if info.Name == "" || info.Version == "" {
		return nil, fmt.Errorf("header missing name or version tag")
	}
	return info, nil
}

type rpmIndexEntry struct {
	Tag    int32
	Type   int32
	Offset int32
	Count  int32
}

// readHeaderSection reads one header section returning its index entries
// and data store.
func readHeaderSection(r io.Reader) ([]rpmIndexEntry, []byte, error) {
	preamble := make([]byte, 16)
	if _, err := io.ReadFull(r, preamble); err != nil {
		return nil, nil, fmt.Errorf("truncated preamble: %w", err)
	}
	if !bytes.Equal(preamble[0:4], rpmHeaderMagic) {
		return nil, nil, fmt.Errorf("bad section magic")
	}
	nindex := binary.BigEndian.Uint32(preamble[8:12])
	hsize := binary.BigEndian.Uint32(preamble[12:16])
	if nindex > 65536 || hsize > 256<<20 {
		return nil, nil, fmt.Errorf("implausible section dimensions (%d entries, %d bytes)", nindex, hsize)
	}

	index := make([]rpmIndexEntry, nindex)
	if err := binary.Read(r, binary.BigEndian, &index); err != nil {
		return nil, nil, fmt.Errorf("truncated index: %w", err)
	}
	store := make([]byte, hsize)
	if _, err := io.ReadFull(r, store); err != nil {
		return nil, nil, fmt.Errorf("truncated store: %w", err)
	}
	return index, store, nil
}

// skipHeaderSection reads past a header section, optionally consuming the
// trailing 8-byte alignment padding used after the signature section.
func skipHeaderSection(r io.Reader, padded bool) (uint32, uint32, error) {
	preamble := make([]byte, 16)
	if _, err := io.ReadFull(r, preamble); err != nil {
		return 0, 0, fmt.Errorf("truncated preamble: %w", err)
	}
	if !bytes.Equal(preamble[0:4], rpmHeaderMagic) {
		return 0, 0, fmt.Errorf("bad section magic")
	}
	nindex := binary.BigEndian.Uint32(preamble[8:12])
	hsize := binary.BigEndian.Uint32(preamble[12:16])
	if nindex > 65536 || hsize > 256<<20 {
		return 0, 0, fmt.Errorf("implausible section dimensions (%d entries, %d bytes)", nindex, hsize)
	}
	skip := int64(nindex)*16 + int64(hsize)
	if padded && skip%8 != 0 {
		skip += 8 - skip%8
	}
	if _, err := io.CopyN(io.Discard, r, skip); err != nil {
		return 0, 0, fmt.Errorf("truncated section body: %w", err)
	}
	return nindex, hsize, nil
}

// stringTag extracts a STRING (type 6) tag value from the store.
func stringTag(index []rpmIndexEntry, store []byte, tag int32) string {
	for _, e := range index {
		if e.Tag != tag || e.Type != 6 {
			continue
		}
		if e.Offset < 0 || int(e.Offset) >= len(store) {
			return ""
		}
		end := bytes.IndexByte(store[e.Offset:], 0)
		if end < 0 {
			return ""
		}
		return string(store[e.Offset : int(e.Offset)+end])
	}
	return ""
}
