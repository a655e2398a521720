// Package main - client.go implements the copy, paste, and status
// subcommands, which talk to a running hub over its HTTP API.
//
// Examples:
//
//	# Copy text directly
//	cliphub copy "Hello, World!"
//
//	# Copy from stdin
//	cat file.txt | cliphub copy
//
//	# Print the hub's clipboard
//	cliphub paste
//
//	# Check the hub
//	cliphub status --json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/Veraticus/cliphub/pkg/client"
)

// runClientCommand dispatches copy/paste/status and reports whether the
// first argument named one of them.
func runClientCommand(args []string) (bool, error) {
	if len(args) == 0 {
		return false, nil
	}

	switch args[0] {
	case "copy":
		return true, runCopy(args[1:])
	case "paste":
		return true, runPaste(args[1:])
	case "status":
		return true, runStatus(args[1:])
	default:
		return false, nil
	}
}

func clientFlags(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	url := fs.String("url", "", "Hub address (default: CLIPHUB_URL or "+client.DefaultBaseURL+")")
	return fs, url
}

// runCopy submits content to the hub. Content comes from the argument
// if present, otherwise from stdin.
func runCopy(args []string) error {
	fs, url := clientFlags("copy")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var content string
	if fs.NArg() > 0 {
		content = fs.Arg(0)
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
		content = string(data)
	}

	if content == "" {
		return fmt.Errorf("no content to copy")
	}

	c := client.New(&client.Config{BaseURL: *url})
	return c.Copy(content)
}

// runPaste prints the hub's clipboard to stdout, with no trailing
// newline so output pipes cleanly.
func runPaste(args []string) error {
	fs, url := clientFlags("paste")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := client.New(&client.Config{BaseURL: *url})
	content, err := c.Paste()
	if err != nil {
		return err
	}

	_, err = fmt.Print(content)
	return err
}

// runStatus displays the hub's status report.
func runStatus(args []string) error {
	fs, url := clientFlags("status")
	statusJSON := fs.Bool("json", false, "Output status as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := client.New(&client.Config{BaseURL: *url})
	status, err := c.Status()
	if err != nil {
		return err
	}

	if *statusJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(status)
	}

	printHumanStatus(status)
	return nil
}

// printHumanStatus prints status in a human-readable format.
func printHumanStatus(status *client.Status) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	_, _ = fmt.Fprintf(w, "Version:\t%s\n", status.Version)
	_, _ = fmt.Fprintf(w, "Uptime:\t%s\n", status.Uptime)
	_, _ = fmt.Fprintf(w, "Auto-Sync:\t%v\n", status.AutoSync)

	_, _ = fmt.Fprintf(w, "\nDevices:\n")
	_, _ = fmt.Fprintf(w, "  Connected:\t%d\n", status.Connected)
	_, _ = fmt.Fprintf(w, "  Registered:\t%d\n", status.Devices)
	_, _ = fmt.Fprintf(w, "  Auto-Sync:\t%d\n", status.AutoSyncCount)

	_, _ = fmt.Fprintf(w, "\nSynchronization:\n")
	_, _ = fmt.Fprintf(w, "  Accepted:\t%d\n", status.Stats.Accepted)
	_, _ = fmt.Fprintf(w, "  Queued:\t%d\n", status.Stats.Queued)
	_, _ = fmt.Fprintf(w, "  Rejected:\t%d\n", status.Stats.Rejected)
	_, _ = fmt.Fprintf(w, "  Ignored:\t%d\n", status.Stats.Ignored)
	_, _ = fmt.Fprintf(w, "  Broadcasts:\t%d\n", status.Stats.Broadcasts)

	if !status.Stats.LastAccepted.IsZero() {
		_, _ = fmt.Fprintf(w, "  Last Accepted:\t%s\n", status.Stats.LastAccepted.Format("2006-01-02 15:04:05"))
	}
}
