package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/parley-protocol/parley/internal/crypto"
)

func main() {
	out := flag.String("out", "", "Write private key PEM to this file (public key goes to <out>.pub)")
	flag.Parse()

	priv, err := crypto.GenerateKeyPair()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Key generation failed: %v\n", err)
		os.Exit(1)
	}

	privPEM, err := crypto.EncodePrivateKeyPEM(priv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode private key: %v\n", err)
		os.Exit(1)
	}
	pubPEM, err := crypto.EncodePublicKeyPEM(&priv.PublicKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode public key: %v\n", err)
		os.Exit(1)
	}

	if *out == "" {
		fmt.Printf("%s%s", privPEM, pubPEM)
		return
	}

	if err := os.WriteFile(*out, privPEM, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write private key: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out+".pub", pubPEM, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write public key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Private key: %s\n", *out)
	fmt.Printf("Public key:  %s.pub\n", *out)
}
