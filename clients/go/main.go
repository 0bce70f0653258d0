// Parley CLI - command line client for the Parley signed-chat server.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/parley-protocol/parley/clients/go/parley"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("PARLEY_URL")

	client := parley.NewClient(baseURL)
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health()
		exitOnError(err)
		printJSON(resp)

	case "register":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: parley register <name>")
			os.Exit(1)
		}
		resp, err := client.Register(os.Args[2])
		exitOnError(err)
		fmt.Printf("Registered as: %s\n", resp.ID)

	case "post":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: parley post <message>")
			os.Exit(1)
		}
		resp, err := client.PostMessage(os.Args[2])
		exitOnError(err)
		fmt.Printf("Posted: %s\n", resp.ID)
		if resp.Reply != nil {
			fmt.Printf("%s: %s\n", resp.Reply.Sender, resp.Reply.Body)
		}

	case "read":
		resp, err := client.GetMessages(20, 0)
		exitOnError(err)
		for i := len(resp.Messages) - 1; i >= 0; i-- {
			msg := resp.Messages[i]
			ts := time.UnixMilli(msg.Timestamp).Format("2006-01-02 15:04:05")
			fmt.Printf("[%s] %s: %s\n", ts, msg.Sender, msg.Body)
		}

	case "check":
		// Re-verify the most recent messages against the server.
		resp, err := client.GetMessages(20, 0)
		exitOnError(err)
		for _, msg := range resp.Messages {
			result, err := client.Verify(&msg.Envelope)
			exitOnError(err)
			fmt.Printf("%-9s %s: %s\n", result.Verdict, msg.Sender, msg.Body)
		}

	case "whoami":
		if client.ParticipantID == "" {
			fmt.Println("Not registered")
			os.Exit(1)
		}
		fmt.Println(client.ParticipantID)

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Parley CLI

Usage: parley <command> [args]

Commands:
  health            Check server health
  register <name>   Generate a keypair and register it
  post <message>    Seal and post a message
  read              Read recent messages
  check             Re-verify recent message signatures
  whoami            Print the registered participant ID

Environment:
  PARLEY_URL     Server URL (default http://localhost:8080)
  PARLEY_CONFIG  Credentials directory (default ~/.parley)`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
