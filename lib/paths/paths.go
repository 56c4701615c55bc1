// Package paths provides centralized path construction for the root filesystem
// layout the init process boots into.
package paths

import "path/filepath"

// Paths provides typed path construction rooted at the target filesystem.
type Paths struct {
	root string
}

// New creates a new Paths instance for the given root directory.
func New(root string) *Paths {
	return &Paths{root: root}
}

// Userland path methods

// BinDir returns the directory the busybox symlink farm is installed into.
func (p *Paths) BinDir() string {
	return filepath.Join(p.root, "bin")
}

// Busybox returns the path to the busybox multi-call binary.
func (p *Paths) Busybox() string {
	return filepath.Join(p.BinDir(), "busybox")
}

// Pseudo-filesystem mount points

// Proc returns the procfs mount point.
func (p *Paths) Proc() string {
	return filepath.Join(p.root, "proc")
}

// Sys returns the sysfs mount point.
func (p *Paths) Sys() string {
	return filepath.Join(p.root, "sys")
}

// Shell paths

// ShellInit returns the script the shell sources on startup through $ENV.
func (p *Paths) ShellInit() string {
	return filepath.Join(p.root, ".fsociety", "shellcode.sh")
}

// Home returns root's home directory. The trailing slash is kept because the
// shell prints $HOME verbatim in prompts.
func (p *Paths) Home() string {
	return filepath.Join(p.root, "root") + "/"
}
