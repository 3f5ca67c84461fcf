package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScanOnSimulatedBus(t *testing.T) {
	out, err := execute(t, "scan", "--sim", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Found device at addr 0x4A")
	assert.Contains(t, out, "Found device at addr 0x4E")
	assert.Contains(t, out, "Found device at addr 0x49")
	assert.NotContains(t, out, "0x4D")
	assert.Contains(t, out, "3 device(s) on bus 1")
}

func TestScanHonoursBusFlag(t *testing.T) {
	out, err := execute(t, "scan", "--sim", "--bus", "3", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "on bus 3")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bus: 1\nsensors:\n  - {name: x, address: 0x80}\n"), 0o600))

	_, err := execute(t, "scan", "--sim", "--config", path)
	require.Error(t, err)
}

func TestDemoSimLeavesUpconverterUnplugged(t *testing.T) {
	s := demoSim()
	buf := make([]byte, 2)
	require.NoError(t, s.Tx(0x4A, nil, buf))
	require.Error(t, s.Tx(0x4D, nil, buf))
}
