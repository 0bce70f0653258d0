package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/parley-protocol/parley/internal/envelope"
	"github.com/parley-protocol/parley/internal/keyring"
	"github.com/parley-protocol/parley/internal/models"
)

func main() {
	keyFile := flag.String("key", "", "PEM file with the signer's private key")
	keyID := flag.String("key-id", "", "Key reference to embed in the envelope")
	sender := flag.String("sender", "", "Sender identifier")
	kind := flag.String("kind", models.KindUser, "Message kind (user or bot)")
	body := flag.String("body", "", "Message body (reads stdin when empty)")
	flag.Parse()

	if *keyFile == "" || *keyID == "" || *sender == "" {
		fmt.Fprintln(os.Stderr, "Usage: sign -key <private.pem> -key-id <ref> -sender <id> [-kind user|bot] [-body <text>]")
		fmt.Fprintln(os.Stderr, "  Reads body from stdin if -body not specified")
		os.Exit(1)
	}

	priv, err := keyring.LoadPrivateKeyFile(*keyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid private key: %v\n", err)
		os.Exit(1)
	}

	text := *body
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read body: %v\n", err)
			os.Exit(1)
		}
		text = strings.TrimRight(string(data), "\n")
	}

	msg := models.Message{
		Sender:    *sender,
		Body:      text,
		Kind:      *kind,
		Timestamp: time.Now().UnixMilli(),
	}

	env, err := envelope.Seal(msg, *keyID, priv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sealing failed: %v\n", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(env, "", "  ")
	fmt.Println(string(out))
}
