package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemRoot(t *testing.T) {
	p := New("/")

	assert.Equal(t, "/bin", p.BinDir())
	assert.Equal(t, "/bin/busybox", p.Busybox())
	assert.Equal(t, "/proc", p.Proc())
	assert.Equal(t, "/sys", p.Sys())
	assert.Equal(t, "/.fsociety/shellcode.sh", p.ShellInit())
	assert.Equal(t, "/root/", p.Home())
}

func TestCustomRoot(t *testing.T) {
	tmpDir := t.TempDir()
	p := New(tmpDir)

	assert.Equal(t, filepath.Join(tmpDir, "proc"), p.Proc())
	assert.Equal(t, filepath.Join(tmpDir, "bin", "busybox"), p.Busybox())
	assert.Equal(t, filepath.Join(tmpDir, "root")+"/", p.Home())
}
