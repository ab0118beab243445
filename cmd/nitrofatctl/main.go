// Command nitrofatctl is a minimal inspector for Nitro cartridge images: it
// mounts an image and lists directories or dumps file contents.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dargueta/nitrofat/nitro"
)

func main() {
	app := cli.App{
		Name:  "nitrofatctl",
		Usage: "inspect a Nitro cartridge filesystem image",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "list the entries of a directory in an image",
				ArgsUsage: "IMAGE_PATH [DIR_PATH]",
				Action:    runList,
			},
			{
				Name:      "cat",
				Usage:     "print a file's contents to stdout",
				ArgsUsage: "IMAGE_PATH FILE_PATH",
				Action:    runCat,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func mountFromArg(imagePath string) (*nitro.Mount, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, err
	}
	return nitro.MountImage(data, imagePath)
}

func runList(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return cli.Exit("usage: nitrofatctl ls IMAGE_PATH [DIR_PATH]", 1)
	}

	mount, err := mountFromArg(c.Args().Get(0))
	if err != nil {
		return err
	}

	dirPath := "/"
	if c.Args().Len() > 1 {
		dirPath = c.Args().Get(1)
	}

	it, err := mount.OpenDir(dirPath)
	if err != nil {
		return err
	}
	defer it.Close()

	for {
		entry, err := it.Next()
		if err != nil {
			break
		}
		if entry.Kind == nitro.EntryDirectory {
			fmt.Printf("%s/\n", entry.Name)
		} else {
			fmt.Printf("%-32s %8d\n", entry.Name, entry.Size)
		}
	}

	return nil
}

func runCat(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("usage: nitrofatctl cat IMAGE_PATH FILE_PATH", 1)
	}

	mount, err := mountFromArg(c.Args().Get(0))
	if err != nil {
		return err
	}

	f, err := mount.OpenFile(c.Args().Get(1))
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if _, err := os.Stdout.Write(buf[:n]); err != nil {
			return err
		}
	}
}
