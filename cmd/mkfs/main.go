// Command mkfs builds a bootable easy-fs image from a directory of host
// files, adapted from the teacher's mkfs.go (biscuit/src/mkfs/mkfs.go):
// same walk-the-skeleton-directory-and-copy shape, targeting
// easyfs.Format/Inode instead of ufs.MkDisk/BootFS, since this port's
// on-disk format is the flat easy-fs layout rather than the teacher's
// logging Unix-like filesystem (no subdirectories, per spec.md's
// distilled DirEntry format — every file in skeldir is added directly
// under the root inode, keyed by its base name).
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"blockdev"
	"easyfs"
	"ustr"
)

// Constants describing the layout of the created filesystem, the easy-fs
// analog of the teacher's nlogblks/ninodeblks/ndatablks.
const (
	totalBlocks = 1 << 16 // 32 MiB image at 512 bytes/block
	inodeCount  = 4096
)

func addFiles(root *easyfs.Inode, skeldir string) {
	err := filepath.WalkDir(skeldir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			fmt.Printf("failed to access %q: %v\n", path, err)
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := filepath.Base(path)
		child := root.Create(ustr.MkUstrSlice([]byte(name)))
		copyData(path, child)
		return nil
	})
	if err != nil {
		fmt.Printf("error walking the path %q: %v\n", skeldir, err)
		os.Exit(1)
	}
}

func copyData(src string, dst *easyfs.Inode) {
	f, err := os.Open(src)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	buf := make([]byte, easyfs.BlockSize)
	var offset uint32
	for {
		n, readErr := f.Read(buf)
		if readErr != nil && readErr != io.EOF {
			panic(readErr)
		}
		if n > 0 {
			dst.WriteAt(offset, buf[:n])
			offset += uint32(n)
		}
		if readErr == io.EOF {
			break
		}
	}
}

func main() {
	if len(os.Args) < 3 {
		fmt.Printf("Usage: mkfs <output image> <skel dir>\n")
		os.Exit(1)
	}
	image := os.Args[1]
	skeldir := os.Args[2]

	dev, err := blockdev.OpenFileDisk(image)
	if err != nil {
		fmt.Printf("failed to create image %q: %v\n", image, err)
		os.Exit(1)
	}
	defer dev.Close()

	efs, err := easyfs.Format(dev, totalBlocks, inodeCount)
	if err != nil {
		fmt.Printf("format failed: %v\n", err)
		os.Exit(1)
	}

	root := easyfs.NewInode(easyfs.RootInode, efs)
	addFiles(root, skeldir)
	efs.Sync()

	fmt.Printf("wrote %s: %d names\n", image, len(root.Ls()))
}
