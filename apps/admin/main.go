package main

import (
	"log"
	"os"

	"github.com/padhaihq/padhai/core"
)

func main() {
	defer os.Exit(0)

	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	cli := &commandLine{
		conf: core.NewConfig(),
		std:  std,
		in:   os.Stdin,
		out:  os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
