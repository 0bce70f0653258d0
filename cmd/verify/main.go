package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/parley-protocol/parley/internal/crypto"
	"github.com/parley-protocol/parley/internal/keyring"
	"github.com/parley-protocol/parley/internal/models"
	"github.com/parley-protocol/parley/internal/verify"
)

func main() {
	pubFile := flag.String("pub", "", "PEM file with the claimed public key")
	envFile := flag.String("envelope", "", "File with the envelope JSON (reads stdin when empty)")
	flag.Parse()

	if *pubFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: verify -pub <public.pem> [-envelope <file>]")
		fmt.Fprintln(os.Stderr, "  Reads envelope JSON from stdin if -envelope not specified")
		os.Exit(1)
	}

	pubPEM, err := os.ReadFile(*pubFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read public key: %v\n", err)
		os.Exit(1)
	}
	pub, err := crypto.DecodePublicKeyPEM(pubPEM)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid public key: %v\n", err)
		os.Exit(1)
	}

	var data []byte
	if *envFile != "" {
		data, err = os.ReadFile(*envFile)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read envelope: %v\n", err)
		os.Exit(1)
	}

	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid envelope JSON: %v\n", err)
		os.Exit(1)
	}

	ring := keyring.NewRing()
	ring.AddPublicKey(env.KeyID, pub)

	result := verify.NewService(ring).VerifyEnvelope(context.Background(), &env)

	out, _ := json.Marshal(result)
	fmt.Println(string(out))

	if result.Verdict != verify.VerdictValid {
		os.Exit(1)
	}
}
