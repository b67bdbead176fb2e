// Package testutil builds tiny but structurally valid deb and rpm package
// files, and complete plugin tree fixtures, for tests across the pipeline.
package testutil

import (
	"archive/tar"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// DebBytes returns a minimal structurally valid Debian package: ar
// envelope with debian-binary and a gzip control.tar carrying the control
// paragraph for name/version.
func DebBytes(t *testing.T, name, version string) []byte {
	t.Helper()

	control := fmt.Sprintf("Package: %s\nVersion: %s\nArchitecture: all\nMaintainer: test\nDescription: test package\n", name, version)

	var controlTar bytes.Buffer
	gz := gzip.NewWriter(&controlTar)
	tw := tar.NewWriter(gz)
	if err := tw.WriteHeader(&tar.Header{Name: "./control", Mode: 0o644, Size: int64(len(control))}); err != nil {
		t.Fatalf("control tar header: %v", err)
	}
	if _, err := tw.Write([]byte(control)); err != nil {
		t.Fatalf("control tar body: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close control tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close control gzip: %v", err)
	}

	var out bytes.Buffer
	out.WriteString("!<arch>\n")
	writeArMember(&out, "debian-binary", []byte("2.0\n"))
	writeArMember(&out, "control.tar.gz", controlTar.Bytes())
	writeArMember(&out, "data.tar.gz", emptyTarGz(t))
	return out.Bytes()
}

// WriteDeb writes a valid deb to path.
func WriteDeb(t *testing.T, path, name, version string) {
	t.Helper()
	if err := os.WriteFile(path, DebBytes(t, name, version), 0o644); err != nil {
		t.Fatalf("write deb: %v", err)
	}
}

func writeArMember(out *bytes.Buffer, name string, data []byte) {
	fmt.Fprintf(out, "%-16s%-12s%-6s%-6s%-8s%-10d`\n", name, "0", "0", "0", "100644", len(data))
	out.Write(data)
	if len(data)%2 == 1 {
		out.WriteByte('\n')
	}
}

func emptyTarGz(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return buf.Bytes()
}

// RPMBytes returns a minimal structurally valid RPM package: lead,
// empty signature section, and a main header with name/version/release/
// arch string tags.
func RPMBytes(t *testing.T, name, version, release string) []byte {
	t.Helper()

	var out bytes.Buffer

	lead := make([]byte, 96)
	copy(lead, []byte{0xed, 0xab, 0xee, 0xdb})
	lead[4] = 3 // version major
	out.Write(lead)

	// Empty signature section (zero index entries, zero store).
	out.Write([]byte{0x8e, 0xad, 0xe8, 0x01, 0, 0, 0, 0})
	binary.Write(&out, binary.BigEndian, uint32(0)) // nindex
	binary.Write(&out, binary.BigEndian, uint32(0)) // hsize

	// Main header with the four string tags.
	type entry struct {
		tag   int32
		value string
	}
	entries := []entry{
		{1000, name},
		{1001, version},
		{1002, release},
		{1022, "noarch"},
	}
	var store bytes.Buffer
	var index bytes.Buffer
	for _, e := range entries {
		binary.Write(&index, binary.BigEndian, e.tag)
		binary.Write(&index, binary.BigEndian, int32(6)) // STRING
		binary.Write(&index, binary.BigEndian, int32(store.Len()))
		binary.Write(&index, binary.BigEndian, int32(1))
		store.WriteString(e.value)
		store.WriteByte(0)
	}

	out.Write([]byte{0x8e, 0xad, 0xe8, 0x01, 0, 0, 0, 0})
	binary.Write(&out, binary.BigEndian, uint32(len(entries)))
	binary.Write(&out, binary.BigEndian, uint32(store.Len()))
	out.Write(index.Bytes())
	out.Write(store.Bytes())
	return out.Bytes()
}

// WriteRPM writes a valid rpm to path.
func WriteRPM(t *testing.T, path, name, version, release string) {
	t.Helper()
	if err := os.WriteFile(path, RPMBytes(t, name, version, release), 0o644); err != nil {
		t.Fatalf("write rpm: %v", err)
	}
}

// WritePluginTree materializes a complete valid plugin tree for the given
// format version under root, with one ubuntu and one centos release each
// carrying one valid package.
func WritePluginTree(t *testing.T, root, formatVersion string) {
	t.Helper()

	for _, d := range []string{
		"deployment_scripts",
		"repositories/ubuntu",
		"repositories/centos",
	} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	meta := fmt.Sprintf(`name: testplug
title: Test Plugin
version: 1.2.3
package_format_version: '%s'
authors:
  - Test Author
licenses:
  - Apache-2.0
homepage: https://example.com/testplug
releases:
  - os: ubuntu
    os_version: '22.04'
    deployment_mode: ha
    deployment_scripts_path: deployment_scripts/
    repository_path: repositories/ubuntu
  - os: centos
    os_version: '9'
    deployment_mode: ha
    deployment_scripts_path: deployment_scripts/
    repository_path: repositories/centos
`, formatVersion)
	WriteFile(t, filepath.Join(root, "metadata.yaml"), meta)

	tasks := `- id: deploy_things
  type: shell
  stage: deployment
  role: '*'
  parameters:
    cmd: bash deploy.sh
    timeout: 60
- id: prepare
  type: shell
  stage: pre_deployment
  role: '*'
  parameters:
    cmd: bash prepare.sh
    timeout: 30
`
	WriteFile(t, filepath.Join(root, "tasks.yaml"), tasks)
	WriteFile(t, filepath.Join(root, "deployment_scripts/deploy.sh"), "#!/bin/bash\necho ok\n")

	WriteDeb(t, filepath.Join(root, "repositories/ubuntu/testpkg_1.0_all.deb"), "testpkg", "1.0")
	WriteRPM(t, filepath.Join(root, "repositories/centos/testpkg-1.0-1.noarch.rpm"), "testpkg", "1.0", "1")
}

// WriteFile writes content to path, failing the test on error.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
