package main

import (
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitConfigError  = 3
	ExitStorageError = 4
	ExitExhausted    = 5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "harvest":
		return runHarvest(cmdArgs)
	case "scan":
		return runScan(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: beerscape <command> [options]

Commands:
  harvest   Probe random identifiers against the endpoint until the goal
            count of resources exists in the output bucket
  scan      Count resources already present in the output bucket

Run 'beerscape <command> -h' for command-specific help.`)
}
