package repo

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"archive/tar"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// DebInfo is the control data extracted from a Debian-style package, plus
// the raw control paragraph for index regeneration.
type DebInfo struct {
	Name         string
	Version      string
	Architecture string

	// Control is the raw control paragraph as found in the package.
	Control string

	// Size is the package file size in bytes.
	Size int64
}

const arMagic = "!<arch>\n"

// ReadDeb parses path far enough to confirm it is a structurally intact
// Debian package: ar envelope readable, control member present and
// decompressable, control paragraph carrying Package and Version. It does
// not unpack the data payload.
func ReadDeb(path string) (*DebInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	magic := make([]byte, len(arMagic))
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, fmt.Errorf("truncated ar envelope: %w", err)
	}
	if string(magic) != arMagic {
		return nil, fmt.Errorf("not an ar archive (bad global magic)")
	}

	for {
		name, size, err := readArHeader(f)
		if err == io.EOF {
			return nil, fmt.Errorf("no control member found")
		}
		if err != nil {
			return nil, err
		}

		if strings.HasPrefix(name, "control.tar") {
			control, err := readControlParagraph(io.LimitReader(f, size), name)
			if err != nil {
				return nil, err
			}
			info := &DebInfo{Control: control, Size: st.Size()}
			info.Name = controlField(control, "Package")
			info.Version = controlField(control, "Version")
			info.Architecture = controlField(control, "Architecture")
			if info.Name == "" || info.Version == "" {
				return nil, fmt.Errorf("control paragraph missing Package or Version")
			}
			return info, nil
		}

		// ar data is 2-byte aligned
		skip := size
		if skip%2 == 1 {
			skip++
		}
		if _, err := io.CopyN(io.Discard, f, skip); err != nil {
			return nil, fmt.Errorf("truncated member %s: %w", name, err)
		}
	}
}

// readArHeader reads one 60-byte ar member header.
func readArHeader(r io.Reader) (name string, size int64, err error) {
	hdr := make([]byte, 60)
	if _, err := io.ReadFull(r, hdr); err != nil {
		if err == io.ErrUnexpectedEOF {
			return "", 0, fmt.Errorf("truncated ar member header")
		}
		return "", 0, err
	}
	if hdr[58] != 0x60 || hdr[59] != 0x0a {
		return "", 0, fmt.Errorf("corrupt ar member header (bad terminator)")
	}
	name = strings.TrimRight(strings.TrimSpace(string(hdr[0:16])), "/")
	size, err = strconv.ParseInt(strings.TrimSpace(string(hdr[48:58])), 10, 64)
	if err != nil || size < 0 {
		return "", 0, fmt.Errorf("corrupt ar member header (bad size field)")
	}
	return name, size, nil
}

// readControlParagraph decompresses the control member and returns the
// control file paragraph.
func readControlParagraph(r io.Reader, member string) (string, error) {
	var tr io.Reader
	switch {
	case strings.HasSuffix(member, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return "", fmt.Errorf("corrupt %s: %w", member, err)
		}
		defer gz.Close()
		tr = gz
	case strings.HasSuffix(member, ".xz"):
		xr, err := xz.NewReader(r)
		if err != nil {
			return "", fmt.Errorf("corrupt %s: %w", member, err)
		}
		tr = xr
	case member == "control.tar":
		tr = r
	default:
		return "", fmt.Errorf("unsupported control member compression: %s", member)
	}

	archive := tar.NewReader(tr)
	for {
		hdr, err := archive.Next()
		if err == io.EOF {
			return "", fmt.Errorf("%s contains no control file", member)
		}
		if err != nil {
			return "", fmt.Errorf("corrupt %s: %w", member, err)
		}
		if strings.TrimPrefix(hdr.Name, "./") == "control" {
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, archive); err != nil {
				return "", fmt.Errorf("corrupt control file: %w", err)
			}
			return buf.String(), nil
		}
	}
}

// controlField extracts a single header value from a control paragraph.
func controlField(control, field string) string {
	for _, line := range strings.Split(control, "\n") {
		if v, ok := strings.CutPrefix(line, field+":"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
